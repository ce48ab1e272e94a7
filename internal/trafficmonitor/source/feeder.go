package source

import (
	"time"

	"github.com/pkg/errors"
	"k8s.io/utils/clock"

	"github.com/G-Research/trafficmonitor/internal/common/context"
	"github.com/G-Research/trafficmonitor/internal/common/logging"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/metrics"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/model"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/queue"
)

// Feeder streams readings from a Reader onto the work queue. It is the single producer of the pipeline:
// when it returns, the queue has been closed and no further readings will arrive.
type Feeder struct {
	queue   *queue.WorkQueue[model.Reading]
	delay   time.Duration
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewFeeder(queue *queue.WorkQueue[model.Reading], delay time.Duration, clock clock.Clock, metrics *metrics.Metrics) *Feeder {
	return &Feeder{
		queue:   queue,
		delay:   delay,
		clock:   clock,
		metrics: metrics,
	}
}

// Run pushes every reading produced by reader onto the queue, pausing for the configured delay after each
// one, and returns the number of readings fed. A nil reader feeds nothing. Cancelling ctx ends the feed
// early. Whatever the outcome, the queue is closed before Run returns.
func (f *Feeder) Run(ctx *context.Context, reader *Reader) int {
	defer f.queue.Close()
	if reader == nil {
		ctx.Log.Info("No record source available; closing the queue")
		return 0
	}

	fed := 0
	for ctx.Err() == nil {
		reading, ok := reader.Next()
		if !ok {
			f.recordEndOfInput(ctx, reader)
			ctx.Log.Infof("Fed %d readings", fed)
			return fed
		}
		if err := f.queue.Push(reading); err != nil {
			ctx.Log.WithError(err).Warnf("Stopped feeding after %d readings", fed)
			return fed
		}
		fed++
		f.metrics.RecordEnqueued(f.queue.Len())
		ctx.Log.Debugf("Enqueued reading %s", reading)
		f.pause(ctx)
	}
	ctx.Log.Warnf("Feed cancelled after %d readings", fed)
	return fed
}

func (f *Feeder) pause(ctx *context.Context) {
	if f.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-f.clock.After(f.delay):
	}
}

func (f *Feeder) recordEndOfInput(ctx *context.Context, reader *Reader) {
	err := reader.Err()
	if err == nil {
		return
	}
	var malformed *MalformedLineError
	if errors.As(err, &malformed) {
		f.metrics.RecordSourceError(metrics.SourceErrorMalformed)
		ctx.Log.Warnf("Treating line %d as end of input: %s", malformed.Line, malformed.Reason)
		return
	}
	f.metrics.RecordSourceError(metrics.SourceErrorRead)
	logging.WithStacktrace(ctx.Log, err).Error("Error reading traffic data; treating as end of input")
}
