package common

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	commonconfig "github.com/G-Research/trafficmonitor/internal/common/config"
)

// LoadConfig reads config.yaml from defaultPath, if present, then merges every file in overrideConfigs in
// order, and finally unmarshals the result into config. Missing base config is not an error: defaults
// registered on v still apply.
func LoadConfig(v *viper.Viper, config interface{}, defaultPath string, overrideConfigs []string) error {
	v.SetConfigName("config")
	v.AddConfigPath(defaultPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.WithMessagef(err, "error reading base config from %s", defaultPath)
		}
		log.Debugf("No base config found in %s, using defaults", defaultPath)
	} else {
		log.Debugf("Read base config from %s", v.ConfigFileUsed())
	}

	for _, overrideConfig := range overrideConfigs {
		v.SetConfigFile(overrideConfig)
		if err := v.MergeInConfig(); err != nil {
			return errors.WithMessagef(err, "error reading config from %s", overrideConfig)
		}
		log.Debugf("Read config from %s", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(config, commonconfig.CustomHooks...); err != nil {
		return errors.WithMessage(err, "error unmarshalling config")
	}
	return nil
}

// BindCommandlineArguments binds every flag in flags to the viper key returned by keyFor. Flags for which
// keyFor returns "" are left unbound.
func BindCommandlineArguments(v *viper.Viper, flags *pflag.FlagSet, keyFor func(flagName string) string) error {
	var err error
	flags.VisitAll(func(flag *pflag.Flag) {
		key := keyFor(flag.Name)
		if key == "" || err != nil {
			return
		}
		err = v.BindPFlag(key, flag)
	})
	return errors.WithStack(err)
}
