package metrics

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type SourceError string

const (
	SourceErrorUnavailable SourceError = "unavailable"
	SourceErrorMalformed   SourceError = "malformed"
	SourceErrorRead        SourceError = "read"
)

const DefaultPrefix = "traffic_monitor_"

// Metrics holds the pipeline's Prometheus collectors. Each instance registers against its own registry so
// that several pipelines can live in one process.
type Metrics struct {
	prefix             string
	registry           *prometheus.Registry
	readingsEnqueued   prometheus.Counter
	readingsProcessed  *prometheus.CounterVec
	vehiclesAggregated prometheus.Counter
	sourceErrors       *prometheus.CounterVec
	queueDepth         prometheus.Gauge
	signalsTracked     prometheus.Gauge
}

func NewMetrics(prefix string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		prefix:   prefix,
		registry: registry,
		readingsEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "readings_enqueued",
			Help: "Number of readings pushed onto the work queue",
		}),
		readingsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "readings_processed",
			Help: "Number of readings aggregated, grouped by worker",
		}, []string{"worker"}),
		vehiclesAggregated: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "vehicles_aggregated",
			Help: "Sum of vehicle counts over all aggregated readings",
		}),
		sourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "source_errors",
			Help: "Number of record source errors grouped by error type",
		}, []string{"error"}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "queue_depth",
			Help: "Number of readings waiting in the work queue",
		}),
		signalsTracked: factory.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "signals_tracked",
			Help: "Number of distinct signals in the congestion table",
		}),
	}
}

func (m *Metrics) RecordEnqueued(queueDepth int) {
	m.readingsEnqueued.Inc()
	m.queueDepth.Set(float64(queueDepth))
}

func (m *Metrics) RecordProcessed(workerId int, vehicleCount int64, queueDepth int, signals int) {
	m.readingsProcessed.With(prometheus.Labels{"worker": strconv.Itoa(workerId)}).Inc()
	m.vehiclesAggregated.Add(float64(vehicleCount))
	m.queueDepth.Set(float64(queueDepth))
	m.signalsTracked.Set(float64(signals))
}

func (m *Metrics) RecordSourceError(error SourceError) {
	m.sourceErrors.With(prometheus.Labels{"error": string(error)}).Inc()
}

// Enqueued returns the number of readings pushed onto the work queue.
func (m *Metrics) Enqueued() float64 {
	return m.sum(m.prefix + "readings_enqueued")
}

// Processed returns the number of readings aggregated across all workers.
func (m *Metrics) Processed() float64 {
	return m.sum(m.prefix + "readings_processed")
}

func (m *Metrics) sum(name string) float64 {
	families, err := m.registry.Gather()
	if err != nil {
		return 0
	}
	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes all collected metrics to path in the Prometheus text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	return errors.WithMessagef(prometheus.WriteToTextfile(path, m.registry), "error writing metrics to %s", path)
}
