// Package command defines the discrete output events of the gaze engine
// and the action-execution backends that consume them.
//
// This package follows the Interface Segregation Principle: the engine
// depends only on Backend, and concrete backends decide what "performing"
// a command means. The engine never blocks on a backend; see Dispatcher.
package command

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies what a command does. Kinds are plain strings so that
// sequence patterns loaded from data files can name commands without a
// code change.
type Kind string

// Built-in command kinds.
const (
	// Directional commands.
	KindLeft         Kind = "LEFT"
	KindRight        Kind = "RIGHT"
	KindScrollUp     Kind = "SCROLL_UP"
	KindScrollDown   Kind = "SCROLL_DOWN"
	KindVolumeUp     Kind = "VOLUME_UP"
	KindBrightnessUp Kind = "BRIGHTNESS_UP"
	KindBack         Kind = "BACK"
	KindHome         Kind = "HOME"

	// Blink-derived commands.
	KindClick       Kind = "CLICK"
	KindDoubleClick Kind = "DOUBLE_CLICK"

	// Assistive commands.
	KindEmergencyAlert Kind = "EMERGENCY_ALERT"
	KindSleepMode      Kind = "SLEEP_MODE"

	// Built-in sequence commands (custom patterns may add more).
	KindCallNurse Kind = "CALL_NURSE"
	KindAdjustBed Kind = "ADJUST_BED"
	KindEmergency Kind = "EMERGENCY"
)

// Source identifies which pipeline stage produced a command.
type Source int

const (
	SourceDirection Source = iota
	SourceBlink
	SourceSequence
)

// String returns the source name for logging.
func (s Source) String() string {
	switch s {
	case SourceDirection:
		return "direction"
	case SourceBlink:
		return "blink"
	case SourceSequence:
		return "sequence"
	}
	return "unknown"
}

// Event is an emitted command. Events are immutable and single-consumer;
// the arbitrator is the sole producer.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Confidence float64   `json:"confidence"`
	Source     Source    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEvent creates an event with a fresh ID.
func NewEvent(kind Kind, confidence float64, source Source, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		Confidence: confidence,
		Source:     source,
		Timestamp:  at,
	}
}

// Backend performs or records command events. Simulate records only;
// Execute performs the corresponding real action. Which one is called is
// an external configuration the arbitrator merely tags into the dispatch;
// backends must not assume both are exercised.
type Backend interface {
	Simulate(Event) error
	Execute(Event) error
}
