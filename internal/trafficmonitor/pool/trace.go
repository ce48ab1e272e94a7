package pool

import (
	"fmt"
	"io"
	"sync"
)

// traceWriter serialises whole lines onto an underlying writer shared by all workers.
type traceWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *traceWriter) Tracef(format string, args ...interface{}) error {
	line := fmt.Sprintf(format, args...) + "\n"
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := io.WriteString(w.out, line)
	return err
}
