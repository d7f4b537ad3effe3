// Package intent scores how deliberate a gaze gesture is.
//
// The score combines dwell time in the current zone, gaze velocity, and
// the timing consistency of recent confirmed events into a confidence in
// [0,1] with a qualitative label. Rapid-labelled gestures are treated as
// noise and never reach the sequence matcher or arbitrator.
package intent

import (
	"fmt"
	"math"
	"time"
)

// Label is the qualitative intent classification.
type Label int

const (
	Rapid Label = iota
	Normal
	Deliberate
)

// String returns the label name.
func (l Label) String() string {
	switch l {
	case Rapid:
		return "RAPID"
	case Normal:
		return "NORMAL"
	case Deliberate:
		return "DELIBERATE"
	}
	return "unknown"
}

// Score is one scoring result.
type Score struct {
	Confidence float64 `json:"confidence"`
	Label      Label   `json:"label"`
}

// Confidence formula weights.
const (
	baseConfidence    = 0.5
	durationWeight    = 0.3
	velocityWeight    = 0.2
	consistencyWeight = 0.1

	deliberateFloor = 0.8
	normalFloor     = 0.5
)

// historySize bounds the rolling inter-event interval history.
const historySize = 10

// Scorer computes intent confidence. It keeps a short rolling history of
// inter-event intervals for the consistency bonus.
type Scorer struct {
	quickGlance time.Duration
	intentional time.Duration
	slowVel     float64
	fastVel     float64

	intervals []time.Duration
	lastEvent time.Time
}

// NewScorer creates a scorer. quickGlance is the dwell below which a
// gesture is rejected outright; intentional is the dwell granting the
// full duration bonus; slowVel and fastVel bracket the velocity bonus.
func NewScorer(quickGlance, intentional time.Duration, slowVel, fastVel float64) (*Scorer, error) {
	if quickGlance <= 0 || intentional <= quickGlance {
		return nil, fmt.Errorf("intent dwell thresholds invalid: quick=%v must be positive and below intentional=%v",
			quickGlance, intentional)
	}
	if slowVel <= 0 || fastVel <= slowVel {
		return nil, fmt.Errorf("intent velocity thresholds invalid: slow=%g must be positive and below fast=%g",
			slowVel, fastVel)
	}
	return &Scorer{
		quickGlance: quickGlance,
		intentional: intentional,
		slowVel:     slowVel,
		fastVel:     fastVel,
	}, nil
}

// Score computes the confidence for a gesture with the given dwell and
// velocity magnitude. A dwell below the quick-glance threshold rejects
// immediately regardless of velocity.
func (s *Scorer) Score(dwell time.Duration, velocity float64) Score {
	if dwell < s.quickGlance {
		return Score{Confidence: 0, Label: Rapid}
	}

	confidence := baseConfidence +
		s.durationBonus(dwell) +
		s.velocityBonus(velocity) +
		consistencyWeight*s.Consistency()

	confidence = clamp(confidence, 0, 1)

	label := Rapid
	switch {
	case confidence >= deliberateFloor:
		label = Deliberate
	case confidence >= normalFloor:
		label = Normal
	}
	return Score{Confidence: confidence, Label: label}
}

// durationBonus interpolates from 0 at the quick-glance threshold to the
// full weight at the intentional threshold.
func (s *Scorer) durationBonus(dwell time.Duration) float64 {
	if dwell >= s.intentional {
		return durationWeight
	}
	span := float64(s.intentional - s.quickGlance)
	return durationWeight * float64(dwell-s.quickGlance) / span
}

// velocityBonus interpolates from the full weight at or below the slow
// threshold to 0 at or above the fast threshold. Never negative.
func (s *Scorer) velocityBonus(velocity float64) float64 {
	if velocity <= s.slowVel {
		return velocityWeight
	}
	if velocity >= s.fastVel {
		return 0
	}
	return velocityWeight * (s.fastVel - velocity) / (s.fastVel - s.slowVel)
}

// RecordEvent feeds the consistency history with a confirmed event time.
func (s *Scorer) RecordEvent(at time.Time) {
	if !s.lastEvent.IsZero() {
		interval := at.Sub(s.lastEvent)
		if interval > 0 {
			s.intervals = append(s.intervals, interval)
			if len(s.intervals) > historySize {
				s.intervals = s.intervals[len(s.intervals)-historySize:]
			}
		}
	}
	s.lastEvent = at
}

// Consistency returns 1 minus the normalized variance of recent
// inter-event intervals, in [0,1]. The variance is normalized by the
// squared mean interval so the metric is scale-free; fewer than two
// intervals score zero (no evidence of rhythm yet).
func (s *Scorer) Consistency() float64 {
	if len(s.intervals) < 2 {
		return 0
	}

	var sum float64
	for _, iv := range s.intervals {
		sum += iv.Seconds()
	}
	mean := sum / float64(len(s.intervals))
	if mean <= 0 {
		return 0
	}

	var variance float64
	for _, iv := range s.intervals {
		d := iv.Seconds() - mean
		variance += d * d
	}
	variance /= float64(len(s.intervals))

	normalized := math.Min(1, variance/(mean*mean))
	return 1 - normalized
}

// Reset clears the rolling history.
func (s *Scorer) Reset() {
	s.intervals = s.intervals[:0]
	s.lastEvent = time.Time{}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
