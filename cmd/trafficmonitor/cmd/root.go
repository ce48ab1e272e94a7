package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/utils/clock"

	"github.com/G-Research/trafficmonitor/internal/common"
	commonconfig "github.com/G-Research/trafficmonitor/internal/common/config"
	"github.com/G-Research/trafficmonitor/internal/common/context"
	"github.com/G-Research/trafficmonitor/internal/common/logging"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/configuration"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/metrics"
)

const (
	CustomConfigLocation = "config"
	DefaultConfigPath    = "./config/trafficmonitor"
)

// Maps each command line flag onto the configuration key it overrides.
var configKeys = map[string]string{
	"input":          "inputFile",
	"workers":        "workers",
	"top":            "topSignals",
	"queue-capacity": "queueCapacity",
	"arrival-delay":  "arrivalDelay",
	"log-level":      "logLevel",
	"report-file":    "reportFile",
	"metrics-file":   "metricsFile",
	"metrics-prefix": "metricsPrefix",
}

// RootCmd is the root Cobra command that gets called from the main func. On its own it runs the traffic
// monitor; sub-commands are registered here.
func RootCmd() *cobra.Command {
	return rootCmdWithClock(clock.RealClock{})
}

// Takes a caller-supplied clock; useful for testing.
func rootCmdWithClock(c clock.Clock) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trafficmonitor",
		Short: "trafficmonitor aggregates traffic signal readings and reports the most congested signals.",
		Long: `Streams "<timestamp> <signal_id> <vehicle_count>" readings from the input file through a queue to a pool
of workers, which sum vehicle counts per signal. Once the input is exhausted and every worker has finished,
the most congested signals are printed.

Configuration is read from ` + DefaultConfigPath + `/config.yaml if present, then from each --config file in
order, and finally from command line flags.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logging.ConfigureLogging(config.LogLevel)
			if err := config.Validate(); err != nil {
				commonconfig.LogValidationErrors(err)
				return err
			}

			ctx := context.New(cmd.Context(), log.NewEntry(log.StandardLogger()))
			_, err = trafficmonitor.NewMonitor(config, cmd.OutOrStdout(), c).Run(ctx)
			return err
		},
	}

	defaults := configuration.Default()
	cmd.Flags().StringSlice(
		CustomConfigLocation,
		[]string{},
		"Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)",
	)
	cmd.Flags().String("input", defaults.InputFile, "File of traffic readings to process.")
	cmd.Flags().Int("workers", defaults.Workers, "Number of workers aggregating readings, must be at least 1.")
	cmd.Flags().Int("top", defaults.TopSignals, "Number of congested signals to report.")
	cmd.Flags().Int("queue-capacity", 0, "Maximum number of readings waiting to be processed. 0 means unbounded.")
	cmd.Flags().Duration("arrival-delay", defaults.ArrivalDelay, "Pause after feeding each reading. 0 feeds as fast as possible.")
	cmd.Flags().String("log-level", defaults.LogLevel.String(), "Minimum level of messages logged to stderr.")
	cmd.Flags().String("report-file", "", "If set, write the full ranking to this file as YAML.")
	cmd.Flags().String("metrics-file", "", "If set, write pipeline metrics to this file in the Prometheus text format.")
	cmd.Flags().String("metrics-prefix", metrics.DefaultPrefix, "Prefix of every metric name.")

	cmd.AddCommand(generateCmd())

	return cmd
}

// loadConfig layers defaults, config files and flags into a configuration.
func loadConfig(cmd *cobra.Command) (configuration.TrafficMonitorConfiguration, error) {
	var config configuration.TrafficMonitorConfiguration
	v := viper.New()
	configuration.SetDefaults(v)
	err := common.BindCommandlineArguments(v, cmd.Flags(), func(flagName string) string {
		return configKeys[flagName]
	})
	if err != nil {
		return config, err
	}
	userSpecifiedConfigs, err := cmd.Flags().GetStringSlice(CustomConfigLocation)
	if err != nil {
		return config, err
	}
	err = common.LoadConfig(v, &config, DefaultConfigPath, userSpecifiedConfigs)
	return config, err
}
