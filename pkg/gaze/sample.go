// Package gaze defines the per-frame measurement delivered by the external
// landmark/calibration collaborator.
//
// A Sample is immutable once produced and carries everything the engine
// needs for one tick: the calibrated gaze position in normalized [0,1]
// screen space, the eye aspect ratio, and a validity flag. The engine makes
// no assumption about frame rate; all duration math uses the sample
// timestamp, never frame counts.
package gaze

import (
	"fmt"
	"time"
)

// Sample is one frame of gaze measurement.
type Sample struct {
	// Timestamp is when the frame was captured.
	Timestamp time.Time `json:"timestamp"`

	// X and Y are the calibrated gaze position in normalized [0,1]
	// screen coordinates. Only meaningful when Valid is true.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// EAR is the eye aspect ratio. Low values indicate eyelid closure.
	EAR float64 `json:"ear"`

	// Valid is false when the collaborator could not produce a usable
	// position this frame (eyes closed, partial occlusion).
	Valid bool `json:"valid"`
}

// Validate checks that a sample received from an external feed is well
// formed. Invalid-but-flagged samples are fine; out-of-range values on a
// sample claiming validity are not.
func (s Sample) Validate() error {
	if s.Timestamp.IsZero() {
		return fmt.Errorf("sample missing timestamp")
	}
	if !s.Valid {
		return nil
	}
	if s.X < 0 || s.X > 1 || s.Y < 0 || s.Y > 1 {
		return fmt.Errorf("sample position (%.3f, %.3f) outside [0,1]", s.X, s.Y)
	}
	if s.EAR < 0 {
		return fmt.Errorf("sample EAR %.3f is negative", s.EAR)
	}
	return nil
}
