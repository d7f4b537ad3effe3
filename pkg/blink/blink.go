// Package blink classifies per-frame eyelid closure into blink events.
//
// The classifier is a four-state machine (open, closing, closed, opening)
// driven by the eye aspect ratio crossing a closure threshold. Crossings
// are debounced by a minimum consecutive-frame count, a deliberately
// discrete noise filter: everything else in the engine uses timestamps,
// but sub-debounce flicker is a per-frame artifact of the detector and is
// absorbed in frames.
package blink

import (
	"fmt"
	"time"
)

// State is the eyelid closure state.
type State int

const (
	Open State = iota
	Closing
	Closed
	Opening
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Open:
		return "OPEN"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	case Opening:
		return "OPENING"
	}
	return fmt.Sprintf("STATE(%d)", int(s))
}

// Kind classifies a completed blink by its duration.
type Kind int

const (
	// Short is a click or double-click candidate; the arbitrator
	// disambiguates via the inter-blink timer.
	Short Kind = iota
	// Emergency is a long deliberate closure.
	Emergency
	// Sleep is a closure long enough to request sleep mode.
	Sleep
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Short:
		return "short"
	case Emergency:
		return "emergency"
	case Sleep:
		return "sleep"
	}
	return "unknown"
}

// Completed is emitted once per blink, at the transition back to open.
type Completed struct {
	// Duration is the total closure time, measured from the first
	// below-threshold frame to the first above-threshold frame of the
	// run that confirms the reopen. The reopen debounce frames decide
	// whether the blink ended, they are not part of the closure.
	Duration time.Duration
	// At is the timestamp of the frame that confirmed the reopen.
	At time.Time
}

// Classifier is the eyelid closure state machine.
type Classifier struct {
	threshold float64
	minFrames int
	longBlink time.Duration
	sleep     time.Duration

	state        State
	belowCount   int
	aboveCount   int
	closedSince  time.Time
	openingSince time.Time
}

// NewClassifier creates a blink classifier.
//
// threshold is the eye-aspect-ratio closure threshold; minFrames is the
// consecutive-frame debounce for both closing and reopening; longBlink
// and sleep divide completed durations into short / emergency / sleep
// candidates.
func NewClassifier(threshold float64, minFrames int, longBlink, sleep time.Duration) (*Classifier, error) {
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("blink threshold %.3f must be in (0,1)", threshold)
	}
	if minFrames < 1 {
		return nil, fmt.Errorf("blink min frames %d must be at least 1", minFrames)
	}
	if longBlink <= 0 || sleep <= longBlink {
		return nil, fmt.Errorf("blink durations invalid: long=%v must be positive and below sleep=%v", longBlink, sleep)
	}
	return &Classifier{
		threshold: threshold,
		minFrames: minFrames,
		longBlink: longBlink,
		sleep:     sleep,
	}, nil
}

// Update advances the state machine with one frame's eye aspect ratio.
// Invalid frames hold the previous state. Returns a Completed event and
// true at the moment a blink finishes.
func (c *Classifier) Update(ear float64, valid bool, now time.Time) (Completed, bool) {
	if !valid {
		return Completed{}, false
	}

	below := ear < c.threshold

	switch c.state {
	case Open:
		if below {
			c.state = Closing
			c.belowCount = 1
			c.closedSince = now
		}

	case Closing:
		if below {
			c.belowCount++
			if c.belowCount >= c.minFrames {
				c.state = Closed
			}
		} else {
			// Flicker shorter than the debounce: absorbed.
			c.state = Open
			c.belowCount = 0
		}

	case Closed:
		if !below {
			c.state = Opening
			c.aboveCount = 1
			c.openingSince = now
		}

	case Opening:
		if below {
			// Re-closure before the reopen confirmed: same episode.
			c.state = Closed
			c.aboveCount = 0
			c.openingSince = time.Time{}
		} else {
			c.aboveCount++
			if c.aboveCount >= c.minFrames {
				done := Completed{Duration: c.openingSince.Sub(c.closedSince), At: now}
				c.state = Open
				c.belowCount = 0
				c.aboveCount = 0
				c.closedSince = time.Time{}
				c.openingSince = time.Time{}
				return done, true
			}
		}
	}

	return Completed{}, false
}

// State returns the current eyelid state.
func (c *Classifier) State() State {
	return c.state
}

// ClosedDuration returns how long the eyes have been closed as of now.
// Zero unless the state machine is past the closing debounce.
func (c *Classifier) ClosedDuration(now time.Time) time.Duration {
	if c.state != Closed && c.state != Opening {
		return 0
	}
	return now.Sub(c.closedSince)
}

// Progress returns the live fractional closure progress toward the long
// blink threshold, capped at 1. A read-only derived value for UI feedback.
func (c *Classifier) Progress(now time.Time) float64 {
	d := c.ClosedDuration(now)
	if d <= 0 {
		return 0
	}
	p := float64(d) / float64(c.longBlink)
	if p > 1 {
		return 1
	}
	return p
}

// Classify maps a completed blink duration to its command candidate kind.
// Both boundaries are inclusive upward: exactly the long-blink threshold
// is an emergency candidate, exactly the sleep threshold is sleep.
func (c *Classifier) Classify(d time.Duration) Kind {
	switch {
	case d >= c.sleep:
		return Sleep
	case d >= c.longBlink:
		return Emergency
	}
	return Short
}

// Reset returns the classifier to open, discarding any in-flight episode.
// Used when the upstream detector signals a lost face.
func (c *Classifier) Reset() {
	c.state = Open
	c.belowCount = 0
	c.aboveCount = 0
	c.closedSince = time.Time{}
	c.openingSince = time.Time{}
}
