package oauthcore

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// TraceWriter writes human-readable trace lines for each token-endpoint
// exchange to an arbitrary writer (typically os.Stderr), redacting
// sensitive wire material. It is the debug-visibility counterpart to the
// teacher's internal/observability.TraceWriter, narrowed to OAuth
// exchanges.
type TraceWriter struct {
	mu        sync.Mutex
	writer    io.Writer
	startTime time.Time
}

// NewTraceWriter creates a TraceWriter writing to w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{writer: w, startTime: time.Now()}
}

// WriteExchange writes one completed exchange as a pair of trace lines.
func (t *TraceWriter) WriteExchange(ex DebugExchange) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.startTime).Seconds()
	fmt.Fprintf(t.writer, "[%.3fs] -> %s %s %s\n", elapsed, ex.Request.Method, ex.Request.Url, scrubBody(ex.Request.Body))

	if ex.Response.Error != "" {
		fmt.Fprintf(t.writer, "[%.3fs] <- ERROR: %s\n", elapsed, ex.Response.Error)
		return
	}
	fmt.Fprintf(t.writer, "[%.3fs] <- %d (%s)\n", elapsed, ex.Response.Status, ex.Response.Timeline)
}
