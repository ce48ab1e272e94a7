package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/model"
)

// MalformedLineError records the line that ended a sequence of readings early.
type MalformedLineError struct {
	Line   int
	Text   string
	Reason string
}

func (err *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed reading on line %d (%q): %s", err.Line, err.Text, err.Reason)
}

// Reader yields readings from a line-oriented stream of "<timestamp> <signal_id> <vehicle_count>" triples.
// The sequence ends at end of stream or at the first line that does not parse; blank lines are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	done    bool
	err     error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// OpenFile opens the input file at path for reading.
func OpenFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to open %s", path)
	}
	return f, nil
}

// Next returns the next reading. ok is false once the sequence has ended, after which Err explains why if
// it ended for any reason other than a clean end of stream.
func (r *Reader) Next() (reading model.Reading, ok bool) {
	if r.done {
		return reading, false
	}
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		reading, err := parseReading(text)
		if err != nil {
			r.finish(&MalformedLineError{Line: r.line, Text: text, Reason: err.Error()})
			return model.Reading{}, false
		}
		return reading, true
	}
	r.finish(errors.WithStack(r.scanner.Err()))
	return reading, false
}

// Err returns the error that ended the sequence, or nil if the stream ended cleanly or is still open.
func (r *Reader) Err() error {
	return r.err
}

// Line returns the number of lines consumed so far.
func (r *Reader) Line() int {
	return r.line
}

func (r *Reader) finish(err error) {
	r.done = true
	r.err = err
}

func parseReading(text string) (model.Reading, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return model.Reading{}, errors.Errorf("expected 3 fields but found %d", len(fields))
	}
	var values [3]int64
	for i, field := range fields {
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return model.Reading{}, errors.Errorf("field %d is not an integer: %q", i+1, field)
		}
		values[i] = v
	}
	return model.Reading{
		Timestamp:    values[0],
		SignalId:     values[1],
		VehicleCount: values[2],
	}, nil
}
