package configuration

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/metrics"
)

type TrafficMonitorConfiguration struct {
	// Path of the file holding "<timestamp> <signal_id> <vehicle_count>" readings, one per line
	InputFile string `validate:"required"`
	// Number of workers draining the queue
	Workers int `validate:"gte=1"`
	// Number of signals listed in the congestion report
	TopSignals int `validate:"gte=1"`
	// Maximum number of readings waiting in the queue. Zero means unbounded
	QueueCapacity int `validate:"gte=0"`
	// Pause after each reading is fed, simulating arrival spacing. Zero disables pacing
	ArrivalDelay time.Duration `validate:"gte=0"`
	// Minimum level of log messages written to stderr
	LogLevel log.Level
	// If set, the full ranking is also written to this file as YAML
	ReportFile string
	// If set, pipeline metrics are written to this file in the Prometheus text format
	MetricsFile string
	// Prefix of all metric names
	MetricsPrefix string `validate:"required"`
}

const (
	DefaultInputFile    = "traffic_info.txt"
	DefaultWorkers      = 3
	DefaultTopSignals   = 3
	DefaultArrivalDelay = 300 * time.Millisecond
)

// SetDefaults registers the default value of every configuration key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("inputFile", DefaultInputFile)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("topSignals", DefaultTopSignals)
	v.SetDefault("queueCapacity", 0)
	v.SetDefault("arrivalDelay", DefaultArrivalDelay.String())
	v.SetDefault("logLevel", log.InfoLevel.String())
	v.SetDefault("reportFile", "")
	v.SetDefault("metricsFile", "")
	v.SetDefault("metricsPrefix", metrics.DefaultPrefix)
}

// Default returns the configuration used when nothing is overridden.
func Default() TrafficMonitorConfiguration {
	return TrafficMonitorConfiguration{
		InputFile:     DefaultInputFile,
		Workers:       DefaultWorkers,
		TopSignals:    DefaultTopSignals,
		ArrivalDelay:  DefaultArrivalDelay,
		LogLevel:      log.InfoLevel,
		MetricsPrefix: metrics.DefaultPrefix,
	}
}
