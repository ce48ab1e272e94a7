package trafficmonitor

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/G-Research/trafficmonitor/internal/common/context"
	"github.com/G-Research/trafficmonitor/internal/common/logging"
	"github.com/G-Research/trafficmonitor/internal/common/util"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/configuration"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/congestion"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/metrics"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/model"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/pool"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/queue"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/report"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/source"
)

// Result summarises a completed run.
type Result struct {
	RunId string
	// All signals, most congested first
	Ranking []model.SignalTotal
	// Readings pushed onto the queue by the feed
	Fed int
	// Readings aggregated by the workers, in total and per worker
	Processed int64
	PerWorker []int64
	// Set if the input could not be opened. The run still completes with no readings.
	SourceErr error
	// When the last worker was joined, and when the table was last written to
	WorkersJoinedAt time.Time
	LastWriteAt     time.Time
}

// Monitor runs the congestion pipeline: one feed streaming readings onto the work queue, a pool of workers
// aggregating them into the congestion table, and a report generated once every worker has finished.
type Monitor struct {
	config configuration.TrafficMonitorConfiguration
	stdout io.Writer
	clock  clock.Clock
}

func NewMonitor(config configuration.TrafficMonitorConfiguration, stdout io.Writer, clock clock.Clock) *Monitor {
	return &Monitor{
		config: config,
		stdout: stdout,
		clock:  clock,
	}
}

// Run executes the pipeline to completion. Problems with the input never fail the run; only invalid
// configuration or failing to write a requested output file produce an error.
func (m *Monitor) Run(ctx *context.Context) (*Result, error) {
	if err := m.config.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid configuration")
	}

	runId := uuid.NewString()
	ctx = context.WithLogFields(ctx, log.Fields{"runId": runId, "input": m.config.InputFile})
	ctx.Log.Infof("Traffic monitor starting with %d workers", m.config.Workers)

	pipelineMetrics := metrics.NewMetrics(m.config.MetricsPrefix)
	workQueue := queue.New[model.Reading](m.config.QueueCapacity)
	table := congestion.NewTable(m.clock)
	workers, err := pool.NewPool(workQueue, table, m.config.Workers, m.stdout, pipelineMetrics)
	if err != nil {
		return nil, err
	}

	reader, closeSource, sourceErr := m.openSource(ctx, pipelineMetrics)
	defer closeSource()

	poolDone := make(chan error, 1)
	go func() {
		poolDone <- workers.Run(ctx)
	}()

	feedDone := make(chan int, 1)
	feeder := source.NewFeeder(workQueue, m.config.ArrivalDelay, m.clock, pipelineMetrics)
	go func() {
		feedDone <- feeder.Run(context.WithLogField(ctx, "component", "feed"), reader)
	}()

	fed := <-feedDone
	// The feed closes the queue itself; closing again here is a no-op that keeps shutdown independent of it.
	workQueue.Close()
	if err := <-poolDone; err != nil {
		return nil, errors.WithMessage(err, "error running workers")
	}
	joinedAt := m.clock.Now()
	ctx.Log.Infof("All workers finished: fed %d readings, processed %d", fed, workers.TotalProcessed())

	ranking := report.Rank(table.Snapshot())
	if err := report.Write(m.stdout, ranking, m.config.TopSignals); err != nil {
		logging.WithStacktrace(ctx.Log, err).Warn("Unable to write congestion report")
	}
	if m.config.ReportFile != "" {
		if err := report.WriteYaml(m.config.ReportFile, ranking); err != nil {
			return nil, err
		}
		ctx.Log.Infof("Wrote full ranking to %s", m.config.ReportFile)
	}
	if m.config.MetricsFile != "" {
		if err := pipelineMetrics.WriteToTextfile(m.config.MetricsFile); err != nil {
			return nil, err
		}
		ctx.Log.Infof("Wrote metrics to %s", m.config.MetricsFile)
	}
	if _, err := fmt.Fprintln(m.stdout, report.CompletionMessage); err != nil {
		ctx.Log.WithError(err).Warn("Unable to write completion message")
	}

	return &Result{
		RunId:           runId,
		Ranking:         ranking,
		Fed:             fed,
		Processed:       workers.TotalProcessed(),
		PerWorker:       workers.Processed(),
		SourceErr:       sourceErr,
		WorkersJoinedAt: joinedAt,
		LastWriteAt:     table.LastWrite(),
	}, nil
}

// openSource opens the configured input. If that fails the error is reported and a nil reader returned, so
// the pipeline runs to completion with no readings.
func (m *Monitor) openSource(ctx *context.Context, pipelineMetrics *metrics.Metrics) (*source.Reader, func(), error) {
	f, err := source.OpenFile(m.config.InputFile)
	if err != nil {
		pipelineMetrics.RecordSourceError(metrics.SourceErrorUnavailable)
		logging.WithStacktrace(ctx.Log, err).Error("Unable to open traffic data; continuing with no readings")
		return nil, func() {}, err
	}
	return source.NewReader(f), func() { util.CloseResource(m.config.InputFile, f) }, nil
}
