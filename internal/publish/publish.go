// Package publish defines the outbound event capability. Publishing is
// fire-and-forget: failures must never abort the calling operation, so
// the interface has no error return.
package publish

import (
	"sync"

	"go.uber.org/zap"
)

// Publisher delivers a typed event to whatever bus the host wires in.
type Publisher interface {
	Publish(eventType string, payload any)
}

// Nop discards all events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(string, any) {}

// Logger publishes events by writing them to a structured log. Useful
// as a default until the host attaches a real bus.
type Logger struct {
	Log *zap.Logger
}

// NewLogger creates a log-backed publisher.
func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{Log: log}
}

// Publish implements Publisher.
func (l *Logger) Publish(eventType string, payload any) {
	l.Log.Info("event published",
		zap.String("event_type", eventType),
		zap.Any("payload", payload),
	)
}

// Event is one captured publication.
type Event struct {
	Type    string
	Payload any
}

// Recorder captures events in memory for tests and dry runs.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Type: eventType, Payload: payload})
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// CountByType returns how many events of the given type were published.
func (r *Recorder) CountByType(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
