package source

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/clock"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/G-Research/trafficmonitor/internal/common/context"
	"github.com/G-Research/trafficmonitor/internal/common/logging"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/metrics"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/model"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/queue"
)

func testContext() *context.Context {
	ctx := context.Background()
	ctx.Log = logging.NullEntry()
	return ctx
}

func drain(q *queue.WorkQueue[model.Reading]) []model.Reading {
	var readings []model.Reading
	for {
		reading, ok := q.Pop()
		if !ok {
			return readings
		}
		readings = append(readings, reading)
	}
}

func TestFeeder_FeedsAllReadingsThenCloses(t *testing.T) {
	q := queue.New[model.Reading](0)
	m := metrics.NewMetrics("test_")
	feeder := NewFeeder(q, 0, clock.RealClock{}, m)

	fed := feeder.Run(testContext(), NewReader(strings.NewReader("1 101 5\n2 102 10\n3 101 7\n")))

	assert.Equal(t, 3, fed)
	assert.False(t, q.Accepting())
	assert.Equal(t, []model.Reading{
		{Timestamp: 1, SignalId: 101, VehicleCount: 5},
		{Timestamp: 2, SignalId: 102, VehicleCount: 10},
		{Timestamp: 3, SignalId: 101, VehicleCount: 7},
	}, drain(q))
	assert.Equal(t, 3.0, m.Enqueued())
}

func TestFeeder_NilReaderClosesQueue(t *testing.T) {
	q := queue.New[model.Reading](0)
	feeder := NewFeeder(q, time.Second, clock.RealClock{}, metrics.NewMetrics("test_"))

	assert.Equal(t, 0, feeder.Run(testContext(), nil))
	assert.False(t, q.Accepting())
	assert.Empty(t, drain(q))
}

func TestFeeder_MalformedLineEndsInput(t *testing.T) {
	q := queue.New[model.Reading](0)
	m := metrics.NewMetrics("test_")
	feeder := NewFeeder(q, 0, clock.RealClock{}, m)

	fed := feeder.Run(testContext(), NewReader(strings.NewReader("1 101 5\nnot a reading\n3 101 7\n")))

	assert.Equal(t, 1, fed)
	assert.Len(t, drain(q), 1)
	expected := `
# HELP test_source_errors Number of record source errors grouped by error type
# TYPE test_source_errors counter
test_source_errors{error="malformed"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_source_errors"))
}

func TestFeeder_PacesReadingsOnClock(t *testing.T) {
	const delay = 300 * time.Millisecond
	fakeClock := clocktesting.NewFakeClock(time.Now())
	q := queue.New[model.Reading](0)
	feeder := NewFeeder(q, delay, fakeClock, metrics.NewMetrics("test_"))

	done := make(chan int)
	go func() {
		done <- feeder.Run(testContext(), NewReader(strings.NewReader("1 101 5\n2 102 10\n")))
	}()

	require.Eventually(t, func() bool { return q.Len() == 1 && fakeClock.HasWaiters() }, 5*time.Second, time.Millisecond)
	assert.True(t, q.Accepting())

	fakeClock.Step(delay)
	require.Eventually(t, func() bool { return q.Len() == 2 && fakeClock.HasWaiters() }, 5*time.Second, time.Millisecond)

	fakeClock.Step(delay)
	select {
	case fed := <-done:
		assert.Equal(t, 2, fed)
	case <-time.After(5 * time.Second):
		t.Fatal("feeder did not finish")
	}
	assert.False(t, q.Accepting())
}

func TestFeeder_CancelEndsFeedEarly(t *testing.T) {
	fakeClock := clocktesting.NewFakeClock(time.Now())
	q := queue.New[model.Reading](0)
	feeder := NewFeeder(q, time.Hour, fakeClock, metrics.NewMetrics("test_"))
	ctx, cancel := context.WithCancel(testContext())

	done := make(chan int)
	go func() {
		done <- feeder.Run(ctx, NewReader(strings.NewReader("1 101 5\n2 102 10\n3 101 7\n")))
	}()
	require.Eventually(t, fakeClock.HasWaiters, 5*time.Second, time.Millisecond)
	cancel()

	select {
	case fed := <-done:
		assert.Equal(t, 1, fed)
	case <-time.After(5 * time.Second):
		t.Fatal("feeder did not stop after cancellation")
	}
	assert.False(t, q.Accepting())
	assert.Len(t, drain(q), 1)
}
