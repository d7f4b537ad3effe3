package command

import (
	"sync"
	"time"

	"github.com/sightline/go-sightline/internal/log"
)

// Entry is one recorded command with the mode it was dispatched under.
type Entry struct {
	Event Event     `json:"event"`
	Mode  string    `json:"mode"` // "simulate" or "execute"
	At    time.Time `json:"at"`
}

// Recorder is a Backend that records every event it receives. It backs
// simulation mode and the dashboard's command log, and can wrap another
// backend so live dispatches are logged too.
type Recorder struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int

	// Next, when set, receives Execute calls after recording.
	Next Backend
}

// NewRecorder creates a recorder keeping at most limit entries.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 200
	}
	return &Recorder{limit: limit}
}

// Simulate records the event.
func (r *Recorder) Simulate(e Event) error {
	r.record(e, "simulate")
	log.Info("command simulated",
		"kind", string(e.Kind),
		"source", e.Source.String(),
		"confidence", e.Confidence)
	return nil
}

// Execute records the event and forwards it to the wrapped backend, if any.
func (r *Recorder) Execute(e Event) error {
	r.record(e, "execute")
	if r.Next != nil {
		return r.Next.Execute(e)
	}
	log.Warn("command executed with no live backend configured",
		"kind", string(e.Kind))
	return nil
}

func (r *Recorder) record(e Event, mode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Event: e, Mode: mode, At: time.Now()})
	if len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
}

// Entries returns a copy of the recorded entries, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

var _ Backend = (*Recorder)(nil)
