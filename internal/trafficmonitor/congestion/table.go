package congestion

import (
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"k8s.io/utils/clock"
)

// Table accumulates vehicle counts per signal. Every update is a single read-modify-write under the
// table's own lock, so concurrent workers never lose updates.
type Table struct {
	mu        sync.Mutex
	totals    map[int64]int64
	writes    int64
	lastWrite time.Time
	clock     clock.PassiveClock
}

func NewTable(clock clock.PassiveClock) *Table {
	return &Table{
		totals: make(map[int64]int64),
		clock:  clock,
	}
}

// Add adds vehicleCount to the total of signalId, creating the entry at zero if absent.
func (t *Table) Add(signalId int64, vehicleCount int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals[signalId] += vehicleCount
	t.writes++
	t.lastWrite = t.clock.Now()
}

// Snapshot returns a copy of the current totals.
func (t *Table) Snapshot() map[int64]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.totals)
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.totals)
}

// Writes returns the number of updates applied so far.
func (t *Table) Writes() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writes
}

// LastWrite returns the time of the most recent update, or the zero time if there has been none.
func (t *Table) LastWrite() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastWrite
}
