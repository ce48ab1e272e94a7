package source

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/model"
)

// Generator produces a deterministic sequence of synthetic readings. Signal ids run from FirstSignalId to
// FirstSignalId+Signals-1 and timestamps increase by one per reading.
type Generator struct {
	Count          int
	Signals        int
	MaxVehicles    int64
	Seed           int64
	FirstSignalId  int64
	StartTimestamp int64
}

func (g Generator) Validate() error {
	if g.Count < 0 {
		return errors.Errorf("count must not be negative but was %d", g.Count)
	}
	if g.Signals < 1 {
		return errors.Errorf("signals must be at least 1 but was %d", g.Signals)
	}
	if g.MaxVehicles < 0 {
		return errors.Errorf("max vehicles must not be negative but was %d", g.MaxVehicles)
	}
	return nil
}

// Readings returns the full generated sequence.
func (g Generator) Readings() ([]model.Reading, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(g.Seed))
	readings := make([]model.Reading, g.Count)
	for i := range readings {
		readings[i] = model.Reading{
			Timestamp:    g.StartTimestamp + int64(i),
			SignalId:     g.FirstSignalId + rng.Int63n(int64(g.Signals)),
			VehicleCount: rng.Int63n(g.MaxVehicles + 1),
		}
	}
	return readings, nil
}

// WriteTo writes the generated readings to w in the input file format.
func (g Generator) WriteTo(w io.Writer) (int64, error) {
	readings, err := g.Readings()
	if err != nil {
		return 0, err
	}
	buffered := bufio.NewWriter(w)
	var written int64
	for _, reading := range readings {
		n, err := fmt.Fprintln(buffered, reading.String())
		written += int64(n)
		if err != nil {
			return written, errors.WithStack(err)
		}
	}
	return written, errors.WithStack(buffered.Flush())
}
