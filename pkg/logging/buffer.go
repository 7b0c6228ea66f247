package logging

import (
	"strings"
	"sync"
)

// CaptureSize is the number of lines GlobalLogCapture keeps.
const CaptureSize = 100

// LogCaptureWriter is a thread-safe writer that keeps the most recent lines.
type LogCaptureWriter struct {
	mu    sync.RWMutex
	lines []string
	next  int
	full  bool
}

// NewLogCaptureWriter creates a writer keeping up to size lines.
func NewLogCaptureWriter(size int) *LogCaptureWriter {
	return &LogCaptureWriter{lines: make([]string, max(size, 1))}
}

// GlobalLogCapture receives the server log for the HTTP log endpoints.
var GlobalLogCapture = NewLogCaptureWriter(CaptureSize)

// Write implements io.Writer. slog handlers write one record per call.
func (w *LogCaptureWriter) Write(p []byte) (n int, err error) {
	line := strings.TrimRight(string(p), "\n")

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines[w.next] = line
	w.next = (w.next + 1) % len(w.lines)
	if w.next == 0 {
		w.full = true
	}
	return len(p), nil
}

// GetLastLine returns the most recent log line.
func (w *LogCaptureWriter) GetLastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.full && w.next == 0 {
		return ""
	}
	return w.lines[(w.next-1+len(w.lines))%len(w.lines)]
}

// Recent returns up to n lines, oldest first.
func (w *LogCaptureWriter) Recent(n int) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	count := w.next
	if w.full {
		count = len(w.lines)
	}
	n = min(max(n, 0), count)

	out := make([]string, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, w.lines[(w.next-i+len(w.lines))%len(w.lines)])
	}
	return out
}
