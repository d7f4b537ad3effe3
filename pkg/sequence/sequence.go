// Package sequence matches confirmed direction events against ordered
// gesture patterns.
//
// Patterns are data, not code: built-in tables are embedded JSON and
// custom packs load from disk, so new sequences are addable without a
// structural change.
package sequence

import (
	"fmt"
	"time"

	"github.com/sightline/go-sightline/pkg/command"
	"github.com/sightline/go-sightline/pkg/zone"
)

// Pattern is one ordered gesture: a list of direction zones that, entered
// in order within the timeout window, triggers a command.
type Pattern struct {
	// Name identifies the pattern (from its data file).
	Name string
	// Description explains the gesture to a caregiver.
	Description string
	// Command is the command kind emitted on a match.
	Command command.Kind
	// Steps are the zones in order. Neutral is not a valid step.
	Steps []zone.Zone
}

// Validate checks a pattern is usable.
func (p Pattern) Validate() error {
	if p.Command == "" {
		return fmt.Errorf("pattern %q has no command", p.Name)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("pattern %q has no steps", p.Name)
	}
	for i, s := range p.Steps {
		if s == zone.Neutral {
			return fmt.Errorf("pattern %q step %d is NEUTRAL", p.Name, i)
		}
	}
	return nil
}

// Match is a successful pattern match.
type Match struct {
	Pattern Pattern
	At      time.Time
}

type entry struct {
	zone zone.Zone
	at   time.Time
}

// Matcher owns the sequence buffer and the pattern table.
type Matcher struct {
	patterns []Pattern
	timeout  time.Duration
	idle     time.Duration

	buf          []entry
	maxLen       int
	neutralSince time.Time
}

// NewMatcher creates a matcher. timeout bounds the elapsed time from the
// first to the last step of a match; idle is the neutral-zone gap after
// which a partial sequence is abandoned.
func NewMatcher(patterns []Pattern, timeout, idle time.Duration) (*Matcher, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("sequence timeout %v must be positive", timeout)
	}
	if idle <= 0 {
		return nil, fmt.Errorf("sequence idle limit %v must be positive", idle)
	}
	longest := 0
	for _, p := range patterns {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if len(p.Steps) > longest {
			longest = len(p.Steps)
		}
	}
	return &Matcher{
		patterns: patterns,
		timeout:  timeout,
		idle:     idle,
		maxLen:   longest + 1,
	}, nil
}

// Observe appends a confirmed non-neutral direction event and attempts a
// match. Neutral events are ignored; callers gate on intent upstream.
func (m *Matcher) Observe(z zone.Zone, at time.Time) (Match, bool) {
	if z == zone.Neutral {
		return Match{}, false
	}
	m.neutralSince = time.Time{}
	if len(m.patterns) == 0 {
		return Match{}, false
	}

	m.buf = append(m.buf, entry{zone: z, at: at})
	if len(m.buf) > m.maxLen {
		m.buf = m.buf[len(m.buf)-m.maxLen:]
	}

	return m.attempt(at)
}

// Tick handles time-based housekeeping once per frame. When the oldest
// buffered entry has outlived the timeout it is discarded and matching is
// re-attempted on the remainder, a sliding window rather than a wholesale
// clear. A sustained neutral gap clears the buffer entirely.
func (m *Matcher) Tick(now time.Time, inNeutral bool) (Match, bool) {
	if inNeutral {
		if m.neutralSince.IsZero() {
			m.neutralSince = now
		} else if now.Sub(m.neutralSince) > m.idle && len(m.buf) > 0 {
			m.buf = m.buf[:0]
		}
	} else {
		m.neutralSince = time.Time{}
	}

	for len(m.buf) > 0 && now.Sub(m.buf[0].at) > m.timeout {
		m.buf = m.buf[1:]
		if match, ok := m.attempt(now); ok {
			return match, true
		}
	}
	return Match{}, false
}

// attempt matches the buffer's trailing entries against every pattern.
// The longest matching pattern wins; equal lengths resolve to table
// declaration order. On a match the buffer is cleared.
func (m *Matcher) attempt(now time.Time) (Match, bool) {
	best := -1
	for i, p := range m.patterns {
		if !m.trailing(p) {
			continue
		}
		if best == -1 || len(p.Steps) > len(m.patterns[best].Steps) {
			best = i
		}
	}
	if best == -1 {
		return Match{}, false
	}
	match := Match{Pattern: m.patterns[best], At: now}
	m.buf = m.buf[:0]
	return match, true
}

// trailing reports whether the buffer ends with the pattern's steps in
// order, with the matched span inside the timeout window.
func (m *Matcher) trailing(p Pattern) bool {
	n := len(p.Steps)
	if len(m.buf) < n {
		return false
	}
	tail := m.buf[len(m.buf)-n:]
	for i, step := range p.Steps {
		if tail[i].zone != step {
			return false
		}
	}
	return tail[n-1].at.Sub(tail[0].at) <= m.timeout
}

// Buffer returns a copy of the buffered zones, oldest first.
func (m *Matcher) Buffer() []zone.Zone {
	out := make([]zone.Zone, len(m.buf))
	for i, e := range m.buf {
		out[i] = e.zone
	}
	return out
}

// Patterns returns the pattern table.
func (m *Matcher) Patterns() []Pattern {
	return m.patterns
}

// Reset clears the buffer and neutral-gap tracking.
func (m *Matcher) Reset() {
	m.buf = m.buf[:0]
	m.neutralSince = time.Time{}
}
