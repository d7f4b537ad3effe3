// Package arbiter turns candidate events from the upstream classifiers
// into at most one emitted command per tick.
//
// The arbiter owns the cooldown ledger, resolves single versus double
// blink clicks with an inter-blink timer, applies priority between
// simultaneous candidates, and optionally withholds critical commands
// until a confirmation blink pattern ratifies them. Life-safety commands
// outrank convenience commands by policy: sequence matches first, then
// blink-derived commands (emergency and sleep above click and
// double-click), then direction gestures.
package arbiter

import (
	"fmt"
	"time"

	"github.com/sightline/go-sightline/internal/log"
	"github.com/sightline/go-sightline/pkg/command"
)

// Config holds the arbitration parameters.
type Config struct {
	// CommandCooldown suppresses all emissions after any emission.
	CommandCooldown time.Duration

	// GestureCooldown additionally rate-limits direction-derived
	// commands. Tighter than the global cooldown so blink and sequence
	// commands can interleave with gestures.
	GestureCooldown time.Duration

	// DoubleBlinkWindow is the inter-blink timer: two short blinks
	// completing within it become one double-click.
	DoubleBlinkWindow time.Duration

	// MinConfidence drops candidates below it silently.
	MinConfidence float64

	// ConfirmKinds lists command kinds that require blink confirmation
	// before emission.
	ConfirmKinds []command.Kind

	// ConfirmWindow bounds how long a withheld command waits for its
	// confirmation pattern before being dropped.
	ConfirmWindow time.Duration

	// ConfirmPattern is the inter-blink rhythm of the confirmation
	// gesture, one step per gap. A pause step carries a minimum so
	// rapid blinking cannot satisfy it, e.g.
	// [{0, 250ms}, {300ms, 800ms}] for blink, quick blink, pause, blink.
	ConfirmPattern []ConfirmStep
}

// ConfirmStep bounds one inter-blink gap of the confirmation gesture.
type ConfirmStep struct {
	// Min is the shortest acceptable gap. Zero allows an immediate
	// follow-up blink.
	Min time.Duration
	// Max is the longest acceptable gap.
	Max time.Duration
}

// Validate fails fast on out-of-range parameters.
func (c Config) Validate() error {
	if c.CommandCooldown <= 0 {
		return fmt.Errorf("command cooldown %v must be positive", c.CommandCooldown)
	}
	if c.GestureCooldown <= 0 {
		return fmt.Errorf("gesture cooldown %v must be positive", c.GestureCooldown)
	}
	if c.DoubleBlinkWindow <= 0 {
		return fmt.Errorf("double blink window %v must be positive", c.DoubleBlinkWindow)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("minimum confidence %.2f outside [0,1]", c.MinConfidence)
	}
	if len(c.ConfirmKinds) > 0 {
		if c.ConfirmWindow <= 0 {
			return fmt.Errorf("confirmation window %v must be positive when confirmation kinds are set", c.ConfirmWindow)
		}
		if len(c.ConfirmPattern) == 0 {
			return fmt.Errorf("confirmation pattern must not be empty when confirmation kinds are set")
		}
		for i, step := range c.ConfirmPattern {
			if step.Max <= 0 || step.Min < 0 || step.Min >= step.Max {
				return fmt.Errorf("confirmation pattern step %d invalid: min=%v max=%v", i, step.Min, step.Max)
			}
		}
	}
	return nil
}

// Candidate is a provisional command submitted by one pipeline stage.
type Candidate struct {
	Kind       command.Kind
	Confidence float64
	Source     command.Source
	At         time.Time
}

// Controls are the external toggles threaded into each dispatch decision.
// They affect only the final emission step, never upstream state.
type Controls struct {
	// Live selects Execute over Simulate at the backend.
	Live bool
	// Paused drops all candidates without consuming cooldowns.
	Paused bool
}

// Ledger tracks the last emission per cooldown class.
type Ledger struct {
	lastGlobal  time.Time
	hasGlobal   bool
	lastGesture time.Time
	hasGesture  bool
}

// GlobalRemaining returns how much of the global cooldown is left.
func (l Ledger) GlobalRemaining(now time.Time, cooldown time.Duration) time.Duration {
	if !l.hasGlobal {
		return 0
	}
	rem := cooldown - now.Sub(l.lastGlobal)
	if rem < 0 {
		return 0
	}
	return rem
}

// pendingConfirm is a command withheld awaiting blink confirmation.
type pendingConfirm struct {
	candidate Candidate
	created   time.Time
	deadline  time.Time
}

// Arbiter is the command arbitration state machine. Not safe for
// concurrent use; the pipeline is frame-synchronous by design.
type Arbiter struct {
	cfg    Config
	ledger Ledger

	tick []Candidate

	// Inter-blink click disambiguation.
	pendingClickAt  time.Time
	hasPendingClick bool

	// Recent short-blink completion times for confirmation patterns.
	blinkTimes []time.Time

	pending *pendingConfirm
}

// New creates an arbiter, validating the configuration.
func New(cfg Config) (*Arbiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Arbiter{cfg: cfg}, nil
}

// Submit adds a candidate for the current tick.
func (a *Arbiter) Submit(c Candidate) {
	a.tick = append(a.tick, c)
}

// NoteShortBlink registers a completed short blink. Two within the
// double-blink window become a double-click candidate; otherwise the
// blink is held as a potential single click until the window lapses.
// Every short blink also feeds the confirmation pattern detector.
func (a *Arbiter) NoteShortBlink(at time.Time) {
	a.blinkTimes = append(a.blinkTimes, at)
	if n := len(a.cfg.ConfirmPattern) + 3; len(a.blinkTimes) > n {
		a.blinkTimes = a.blinkTimes[len(a.blinkTimes)-n:]
	}

	if a.hasPendingClick && at.Sub(a.pendingClickAt) <= a.cfg.DoubleBlinkWindow {
		a.hasPendingClick = false
		a.Submit(Candidate{
			Kind:       command.KindDoubleClick,
			Confidence: 1.0,
			Source:     command.SourceBlink,
			At:         at,
		})
		return
	}
	a.pendingClickAt = at
	a.hasPendingClick = true
}

// Tick arbitrates the candidates collected since the last tick and
// returns at most one command event. now is the current frame timestamp;
// wall-clock deadlines advance only with it.
func (a *Arbiter) Tick(now time.Time, controls Controls) (command.Event, bool) {
	candidates := a.tick
	a.tick = nil

	// A held click whose double-blink window lapsed becomes a single
	// click candidate this tick.
	if a.hasPendingClick && now.Sub(a.pendingClickAt) > a.cfg.DoubleBlinkWindow {
		a.hasPendingClick = false
		candidates = append(candidates, Candidate{
			Kind:       command.KindClick,
			Confidence: 1.0,
			Source:     command.SourceBlink,
			At:         a.pendingClickAt,
		})
	}

	if controls.Paused {
		// Pause gates only the dispatch step; upstream state, the
		// ledger and any pending confirmation are untouched.
		return command.Event{}, false
	}

	// Resolve a withheld command before considering new candidates.
	if a.pending != nil {
		if a.confirmationSatisfied(now) {
			c := a.pending.candidate
			a.pending = nil
			if a.cooledDown(now, c) {
				return a.emit(now, c, controls), true
			}
			return command.Event{}, false
		}
		if now.After(a.pending.deadline) {
			log.Debug("confirmation window lapsed, dropping withheld command",
				"kind", string(a.pending.candidate.Kind))
			a.pending = nil
		}
	}

	best, ok := a.selectCandidate(candidates)
	if !ok {
		return command.Event{}, false
	}
	if !a.cooledDown(now, best) {
		return command.Event{}, false
	}

	if a.requiresConfirmation(best.Kind) {
		a.pending = &pendingConfirm{
			candidate: best,
			created:   now,
			deadline:  now.Add(a.cfg.ConfirmWindow),
		}
		log.Debug("withholding command pending blink confirmation",
			"kind", string(best.Kind))
		return command.Event{}, false
	}

	return a.emit(now, best, controls), true
}

// selectCandidate applies the confidence gate and the priority order.
// Candidates below the minimum confidence are dropped silently and
// consume no cooldown.
func (a *Arbiter) selectCandidate(candidates []Candidate) (Candidate, bool) {
	bestRank := 0
	var best Candidate
	for _, c := range candidates {
		if c.Confidence < a.cfg.MinConfidence {
			continue
		}
		// While a command awaits blink confirmation, blinks are the
		// ratification gesture, not clicks.
		if a.pending != nil && c.Source == command.SourceBlink &&
			(c.Kind == command.KindClick || c.Kind == command.KindDoubleClick) {
			continue
		}
		if r := rank(c); r > bestRank {
			bestRank = r
			best = c
		}
	}
	return best, bestRank > 0
}

// rank orders candidate priority; higher wins. Equal ranks keep the
// earlier submission.
func rank(c Candidate) int {
	switch c.Source {
	case command.SourceSequence:
		return 4
	case command.SourceBlink:
		if c.Kind == command.KindEmergencyAlert || c.Kind == command.KindSleepMode {
			return 3
		}
		return 2
	case command.SourceDirection:
		return 1
	}
	return 0
}

// cooledDown checks the global cooldown and, for direction-derived
// candidates, the gesture cooldown.
func (a *Arbiter) cooledDown(now time.Time, c Candidate) bool {
	if a.ledger.hasGlobal && now.Sub(a.ledger.lastGlobal) < a.cfg.CommandCooldown {
		return false
	}
	if c.Source == command.SourceDirection &&
		a.ledger.hasGesture && now.Sub(a.ledger.lastGesture) < a.cfg.GestureCooldown {
		return false
	}
	return true
}

// emit creates the event and updates the ledger atomically with it.
func (a *Arbiter) emit(now time.Time, c Candidate, controls Controls) command.Event {
	a.ledger.lastGlobal = now
	a.ledger.hasGlobal = true
	if c.Source == command.SourceDirection {
		a.ledger.lastGesture = now
		a.ledger.hasGesture = true
	}
	log.Info("command emitted",
		"kind", string(c.Kind),
		"source", c.Source.String(),
		"confidence", c.Confidence,
		"live", controls.Live)
	return command.NewEvent(c.Kind, c.Confidence, c.Source, now)
}

// requiresConfirmation reports whether the kind is in the confirmation
// subset.
func (a *Arbiter) requiresConfirmation(kind command.Kind) bool {
	for _, k := range a.cfg.ConfirmKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// confirmationSatisfied checks whether the trailing short blinks form
// the configured confirmation pattern, entirely after the command was
// withheld.
func (a *Arbiter) confirmationSatisfied(now time.Time) bool {
	need := len(a.cfg.ConfirmPattern) + 1
	if len(a.blinkTimes) < need {
		return false
	}
	recent := a.blinkTimes[len(a.blinkTimes)-need:]
	if recent[0].Before(a.pending.created) {
		return false
	}
	for i, step := range a.cfg.ConfirmPattern {
		gap := recent[i+1].Sub(recent[i])
		if gap < step.Min || gap > step.Max {
			return false
		}
	}
	return true
}

// CooldownRemaining returns the unexpired portion of the global cooldown,
// for status reporting.
func (a *Arbiter) CooldownRemaining(now time.Time) time.Duration {
	return a.ledger.GlobalRemaining(now, a.cfg.CommandCooldown)
}

// PendingConfirmation reports the kind of a withheld command, if any.
func (a *Arbiter) PendingConfirmation() (command.Kind, bool) {
	if a.pending == nil {
		return "", false
	}
	return a.pending.candidate.Kind, true
}

// Reset drops all in-flight state: tick candidates, the held click, the
// blink history and any withheld command. The ledger survives; cooldowns
// are a safety property, not a timer to forget.
func (a *Arbiter) Reset() {
	a.tick = nil
	a.hasPendingClick = false
	a.blinkTimes = a.blinkTimes[:0]
	a.pending = nil
}
