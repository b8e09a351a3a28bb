// Package sentinel prints the stdout lines an external orchestrator parses
// (ROWCOUNT=, CODECOUNT=, RESULT_ID=). Nothing else should be written to stdout.
package sentinel

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer writes sentinel lines. Safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// New creates a sentinel writer over out.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Stdout returns a writer bound to os.Stdout.
func Stdout() *Writer {
	return New(os.Stdout)
}

// Discard returns a writer that drops everything.
func Discard() *Writer {
	return New(io.Discard)
}

func (w *Writer) line(key string, value any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "%s=%v\n", key, value)
}

// RowCount prints ROWCOUNT=<n>.
func (w *Writer) RowCount(n int) { w.line("ROWCOUNT", n) }

// CodeCount prints CODECOUNT=<n>.
func (w *Writer) CodeCount(n int) { w.line("CODECOUNT", n) }

// ResultID prints RESULT_ID=<id>.
func (w *Writer) ResultID(id fmt.Stringer) { w.line("RESULT_ID", id.String()) }
