package congestion

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	clock "k8s.io/utils/clock/testing"
)

var baseTime = time.Date(2022, 3, 1, 15, 4, 5, 0, time.UTC)

func TestTable_Add(t *testing.T) {
	table := NewTable(clock.NewFakePassiveClock(baseTime))
	table.Add(101, 5)
	table.Add(102, 10)
	table.Add(101, 7)

	if diff := cmp.Diff(map[int64]int64{101: 12, 102: 10}, table.Snapshot()); diff != "" {
		t.Errorf("unexpected totals (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, int64(3), table.Writes())
}

func TestTable_ZeroCountCreatesEntry(t *testing.T) {
	table := NewTable(clock.NewFakePassiveClock(baseTime))
	table.Add(7, 0)
	assert.Equal(t, map[int64]int64{7: 0}, table.Snapshot())
}

func TestTable_SnapshotIsACopy(t *testing.T) {
	table := NewTable(clock.NewFakePassiveClock(baseTime))
	table.Add(1, 1)
	snapshot := table.Snapshot()
	snapshot[1] = 100
	table.Add(2, 2)

	assert.Equal(t, map[int64]int64{1: 1, 2: 2}, table.Snapshot())
	assert.Len(t, snapshot, 1)
}

func TestTable_LastWrite(t *testing.T) {
	fakeClock := clock.NewFakePassiveClock(baseTime)
	table := NewTable(fakeClock)
	assert.True(t, table.LastWrite().IsZero())

	table.Add(1, 1)
	assert.Equal(t, baseTime, table.LastWrite())

	fakeClock.SetTime(baseTime.Add(time.Minute))
	table.Add(1, 1)
	assert.Equal(t, baseTime.Add(time.Minute), table.LastWrite())
}

func TestTable_ConcurrentAddsAreNotLost(t *testing.T) {
	const (
		goroutines = 16
		perRoutine = 1000
		signals    = 10
	)
	table := NewTable(clock.NewFakePassiveClock(baseTime))
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perRoutine; i++ {
				table.Add(int64(i%signals), 1)
			}
		}()
	}
	wg.Wait()

	expected := make(map[int64]int64, signals)
	for s := int64(0); s < signals; s++ {
		expected[s] = goroutines * perRoutine / signals
	}
	assert.Equal(t, expected, table.Snapshot())
	assert.Equal(t, int64(goroutines*perRoutine), table.Writes())
}
