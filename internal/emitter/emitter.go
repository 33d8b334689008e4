// Package emitter writes the machine-readable event stream: one JSON
// object per event, prefixed by a fixed sentinel so a parent process can
// split machine lines from human output sharing the stream.
package emitter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Sink receives every marshalled event regardless of JSON mode. The
// widget hub implements this to mirror events to connected overlays.
type Sink interface {
	Publish(event []byte)
}

// Emitter serializes events onto an output stream
type Emitter struct {
	mu       sync.Mutex
	out      io.Writer
	sentinel string
	jsonMode bool
	sinks    []Sink
}

// New creates a new emitter. When jsonMode is false the sentinel lines
// are withheld but sinks still receive every event.
func New(out io.Writer, sentinel string, jsonMode bool) *Emitter {
	return &Emitter{
		out:      out,
		sentinel: sentinel,
		jsonMode: jsonMode,
	}
}

// AddSink registers an additional event consumer
func (e *Emitter) AddSink(sink Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, sink)
}

// JSONMode reports whether sentinel lines are being written
func (e *Emitter) JSONMode() bool {
	return e.jsonMode
}

// Emit marshals the event, fans it out to the sinks, and writes the
// sentinel line when JSON mode is on
func (e *Emitter) Emit(event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, sink := range e.sinks {
		sink.Publish(data)
	}

	if !e.jsonMode {
		return nil
	}
	if _, err := fmt.Fprintf(e.out, "%s %s\n", e.sentinel, data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// EmitError writes the error shape for a fatal failure
func (e *Emitter) EmitError(err error) error {
	return e.Emit(NewErrorEvent(err))
}
