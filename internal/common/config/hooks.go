package config

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		LogLevelHookFunc(),
	)),
}

// LogLevelHookFunc decodes level names such as "debug" or "WARN" into a logrus.Level.
func LogLevelHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != reflect.TypeOf(log.InfoLevel) {
			return data, nil
		}
		switch f.Kind() {
		case reflect.String:
			return log.ParseLevel(data.(string))
		case reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint32:
			return data, nil
		default:
			return nil, fmt.Errorf("cannot decode %v into a log level", data)
		}
	}
}
