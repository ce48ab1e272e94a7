package source

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/model"
)

func TestReader(t *testing.T) {
	tests := map[string]struct {
		input         string
		expected      []model.Reading
		malformedLine int
	}{
		"empty input": {
			input: "",
		},
		"well formed": {
			input: "1 101 5\n2 102 10\n3 101 7\n",
			expected: []model.Reading{
				{Timestamp: 1, SignalId: 101, VehicleCount: 5},
				{Timestamp: 2, SignalId: 102, VehicleCount: 10},
				{Timestamp: 3, SignalId: 101, VehicleCount: 7},
			},
		},
		"no trailing newline and extra whitespace": {
			input: "  1\t101   5\n2 102 10",
			expected: []model.Reading{
				{Timestamp: 1, SignalId: 101, VehicleCount: 5},
				{Timestamp: 2, SignalId: 102, VehicleCount: 10},
			},
		},
		"blank lines are skipped": {
			input: "1 101 5\n\n   \n2 102 10\n",
			expected: []model.Reading{
				{Timestamp: 1, SignalId: 101, VehicleCount: 5},
				{Timestamp: 2, SignalId: 102, VehicleCount: 10},
			},
		},
		"negative values parse": {
			input:    "-1 -2 -3\n",
			expected: []model.Reading{{Timestamp: -1, SignalId: -2, VehicleCount: -3}},
		},
		"non integer ends input": {
			input:         "1 101 5\n2 abc 10\n3 101 7\n",
			expected:      []model.Reading{{Timestamp: 1, SignalId: 101, VehicleCount: 5}},
			malformedLine: 2,
		},
		"too few fields ends input": {
			input:         "1 101\n2 102 10\n",
			malformedLine: 1,
		},
		"too many fields ends input": {
			input:         "1 101 5\n2 102 10 4\n",
			expected:      []model.Reading{{Timestamp: 1, SignalId: 101, VehicleCount: 5}},
			malformedLine: 2,
		},
		"float ends input": {
			input:         "1 101 5.5\n",
			malformedLine: 1,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			reader := NewReader(strings.NewReader(tc.input))
			var readings []model.Reading
			for {
				reading, ok := reader.Next()
				if !ok {
					break
				}
				readings = append(readings, reading)
			}
			assert.Equal(t, tc.expected, readings)

			if tc.malformedLine == 0 {
				assert.NoError(t, reader.Err())
				return
			}
			var malformed *MalformedLineError
			require.ErrorAs(t, reader.Err(), &malformed)
			assert.Equal(t, tc.malformedLine, malformed.Line)

			// The sequence stays finished.
			_, ok := reader.Next()
			assert.False(t, ok)
		})
	}
}

func TestOpenFile_Missing(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "traffic_info.txt"))
	assert.Nil(t, f)
	assert.ErrorContains(t, err, "unable to open")
}
