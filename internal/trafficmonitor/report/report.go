package report

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"sigs.k8s.io/yaml"

	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/model"
)

const (
	NoDataMessage     = "No congestion data available yet..."
	CompletionMessage = "Traffic monitoring completed."
)

// Rank orders the totals in snapshot from most to least congested. Signals with equal totals are ordered
// by ascending signal id.
func Rank(snapshot map[int64]int64) []model.SignalTotal {
	signalIds := maps.Keys(snapshot)
	slices.Sort(signalIds)
	entries := make([]model.SignalTotal, len(signalIds))
	for i, signalId := range signalIds {
		entries[i] = model.SignalTotal{SignalId: signalId, Total: snapshot[signalId]}
	}
	slices.SortStableFunc(entries, func(a, b model.SignalTotal) bool {
		return a.Total > b.Total
	})
	return entries
}

// Top returns the first k ranked entries, or all of them if there are fewer than k.
func Top(entries []model.SignalTotal, k int) []model.SignalTotal {
	if k < 0 {
		k = 0
	}
	if k > len(entries) {
		k = len(entries)
	}
	return entries[:k]
}

// Write prints the top k of the ranked entries, or the no-data notice if there are none.
func Write(w io.Writer, entries []model.SignalTotal, k int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, NoDataMessage)
		return errors.WithStack(err)
	}
	if _, err := fmt.Fprintf(w, "\nTop %d Congested Signals:\n", k); err != nil {
		return errors.WithStack(err)
	}
	for _, entry := range Top(entries, k) {
		if _, err := fmt.Fprintf(w, "Signal %d - Cars Passed: %d\n", entry.SignalId, entry.Total); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

type yamlReport struct {
	Signals []model.SignalTotal `json:"signals"`
}

// WriteYaml writes the full ranking to path as YAML.
func WriteYaml(path string, entries []model.SignalTotal) error {
	if entries == nil {
		entries = []model.SignalTotal{}
	}
	out, err := yaml.Marshal(yamlReport{Signals: entries})
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithMessagef(os.WriteFile(path, out, 0o644), "error writing report to %s", path)
}
