package pool

import (
	"io"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/G-Research/trafficmonitor/internal/common/context"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/congestion"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/metrics"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/model"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/queue"
)

const traceFormat = "[Monitor %d] Analyzed: Signal %d, Cars Passed: %d"

// Pool is a fixed set of workers draining the work queue into the congestion table. Each worker takes the
// queue lock only inside Pop and the table lock only inside Add, so the two are never held together.
type Pool struct {
	queue       *queue.WorkQueue[model.Reading]
	table       *congestion.Table
	workers     int
	trace       *traceWriter
	metrics     *metrics.Metrics
	processed   []int64
	traceFailed atomic.Bool
}

func NewPool(
	queue *queue.WorkQueue[model.Reading],
	table *congestion.Table,
	workers int,
	trace io.Writer,
	metrics *metrics.Metrics,
) (*Pool, error) {
	if workers < 1 {
		return nil, errors.Errorf("at least one worker is required but %d were requested", workers)
	}
	return &Pool{
		queue:     queue,
		table:     table,
		workers:   workers,
		trace:     &traceWriter{out: trace},
		metrics:   metrics,
		processed: make([]int64, workers),
	}, nil
}

// Run starts the workers and blocks until every one of them has seen the queue empty and closed.
func (p *Pool) Run(ctx *context.Context) error {
	group, groupCtx := context.ErrGroup(ctx)
	for i := 0; i < p.workers; i++ {
		workerId := i
		group.Go(func() error {
			p.work(context.WithLogField(groupCtx, "worker", workerId), workerId)
			return nil
		})
	}
	return group.Wait()
}

// Processed returns how many readings each worker aggregated. Only meaningful once Run has returned.
func (p *Pool) Processed() []int64 {
	rv := make([]int64, len(p.processed))
	copy(rv, p.processed)
	return rv
}

// TotalProcessed returns the number of readings aggregated by all workers. Only meaningful once Run has
// returned.
func (p *Pool) TotalProcessed() int64 {
	var total int64
	for _, n := range p.processed {
		total += n
	}
	return total
}

func (p *Pool) work(ctx *context.Context, workerId int) {
	ctx.Log.Debug("Monitor started")
	for {
		reading, ok := p.queue.Pop()
		if !ok {
			ctx.Log.Debugf("Monitor finished after %d readings", p.processed[workerId])
			return
		}

		p.table.Add(reading.SignalId, reading.VehicleCount)
		p.processed[workerId]++
		p.metrics.RecordProcessed(workerId, reading.VehicleCount, p.queue.Len(), p.table.Len())

		err := p.trace.Tracef(traceFormat, workerId, reading.SignalId, reading.VehicleCount)
		if err != nil && p.traceFailed.CompareAndSwap(false, true) {
			ctx.Log.WithError(err).Warn("Unable to write trace output; continuing without it")
		}
	}
}
