package workflow

import (
	"fmt"
	"io"
	"time"
)

// Event describes one state transition during a run.
type Event struct {
	RunID   string
	State   State
	Message string
	Elapsed time.Duration // since the run started
	At      time.Time
}

// Sink receives workflow events. Emit must be safe to call from the
// goroutine driving the run.
type Sink interface {
	Emit(Event)
}

// NopSink discards all events.
type NopSink struct{}

// Emit does nothing
func (NopSink) Emit(Event) {}

// WriterSink prints one line per transition, for verbose CLI output.
type WriterSink struct {
	W io.Writer
}

// Emit writes the event as a single progress line
func (s WriterSink) Emit(e Event) {
	fmt.Fprintf(s.W, "[%s] %s (%s)\n", e.State, e.Message, e.Elapsed.Round(time.Millisecond))
}
