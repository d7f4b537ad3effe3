// Package source provides gaze sample ingress for the engine: a live
// websocket feed from the external detector and an NDJSON file replay.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sightline/go-sightline/pkg/gaze"
)

// ErrNoDetection is returned by Next when the upstream detector
// explicitly reports it lost the face. Callers reset the engine's gaze
// timers and keep reading.
var ErrNoDetection = errors.New("no detection")

// Source yields gaze samples in timestamp order. Next returns io.EOF
// when the stream ends and ErrNoDetection on an explicit face-lost
// signal; both are expected conditions, not failures.
type Source interface {
	Next(ctx context.Context) (gaze.Sample, error)
	Close() error
}

// Frame is the detector wire format: one JSON object per processed
// video frame.
type Frame struct {
	// Timestamp is the capture time in Unix seconds.
	Timestamp float64 `json:"timestamp"`

	// Detected is false when the detector lost the face entirely.
	Detected bool `json:"detected"`

	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	EAR float64 `json:"ear"`

	// Valid is false when the face was found but the eye landmarks were
	// too unreliable for a position fix.
	Valid bool `json:"valid"`
}

// Sample converts the frame to an engine sample. Call only on detected
// frames.
func (f Frame) Sample() (gaze.Sample, error) {
	s := gaze.Sample{
		Timestamp: time.Unix(0, int64(f.Timestamp*float64(time.Second))),
		X:         f.X,
		Y:         f.Y,
		EAR:       f.EAR,
		Valid:     f.Valid,
	}
	if err := s.Validate(); err != nil {
		return gaze.Sample{}, fmt.Errorf("bad frame: %w", err)
	}
	return s, nil
}
