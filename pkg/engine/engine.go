// Package engine composes the six gaze-processing stages into a single
// frame-synchronous pipeline: blink classification, position/velocity
// filtering, zone classification, intent scoring, sequence matching and
// command arbitration.
//
// The pipeline is single-producer: one Tick per gaze sample, strictly in
// order. A mutex guards the engine only so the dashboard can take
// snapshots and flip runtime toggles from another goroutine; the frame
// path itself never contends with other frame processing.
package engine

import (
	"sync"
	"time"

	"github.com/sightline/go-sightline/internal/log"
	"github.com/sightline/go-sightline/pkg/arbiter"
	"github.com/sightline/go-sightline/pkg/blink"
	"github.com/sightline/go-sightline/pkg/command"
	"github.com/sightline/go-sightline/pkg/filter"
	"github.com/sightline/go-sightline/pkg/gaze"
	"github.com/sightline/go-sightline/pkg/intent"
	"github.com/sightline/go-sightline/pkg/sequence"
	"github.com/sightline/go-sightline/pkg/zone"
)

// Controls are the runtime toggles consumed at the top of each tick.
type Controls struct {
	// Live routes emitted commands to Execute instead of Simulate.
	Live bool
	// Paused suppresses dispatch while leaving all classification and
	// filter state advancing normally.
	Paused bool
}

// Engine is the composed gaze pipeline.
type Engine struct {
	mu  sync.RWMutex
	cfg Config

	blinks *blink.Classifier
	filt   *filter.Filter
	zones  *zone.Classifier
	scorer *intent.Scorer
	seq    *sequence.Matcher
	arb    *arbiter.Arbiter

	controls Controls

	// Dwell tracking for the current zone.
	currentZone   zone.Zone
	zoneSince     time.Time
	zoneConfirmed bool

	lastScore intent.Score
	lastEst   filter.Estimate
	frameAt   time.Time

	perf perfCounters
}

func (c Config) arbiterConfig() arbiter.Config {
	return arbiter.Config{
		CommandCooldown:   c.CommandCooldown,
		GestureCooldown:   c.GestureCooldown,
		DoubleBlinkWindow: c.DoubleBlinkWindow,
		MinConfidence:     c.MinConfidence,
		ConfirmKinds:      c.ConfirmKinds,
		ConfirmWindow:     c.ConfirmWindow,
		ConfirmPattern:    c.ConfirmPattern,
	}
}

// New builds an engine from the configuration, validating every stage's
// parameters up front. Patterns default to the built-in table.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	blinks, err := blink.NewClassifier(cfg.EARThreshold, cfg.BlinkMinFrames,
		cfg.LongBlinkThreshold, cfg.SleepThreshold)
	if err != nil {
		return nil, err
	}
	filt, err := filter.New(cfg.ProcessNoise, cfg.MeasurementNoise)
	if err != nil {
		return nil, err
	}
	zones, err := zone.NewClassifier(cfg.Bounds, cfg.ZoneHysteresis)
	if err != nil {
		return nil, err
	}
	scorer, err := intent.NewScorer(cfg.QuickGlance, cfg.IntentionalDwell,
		cfg.SlowVelocity, cfg.FastVelocity)
	if err != nil {
		return nil, err
	}

	patterns := cfg.Patterns
	if patterns == nil {
		patterns, err = sequence.LoadBuiltIn()
		if err != nil {
			return nil, err
		}
	}
	seq, err := sequence.NewMatcher(patterns, cfg.SequenceTimeout, cfg.SequenceIdle)
	if err != nil {
		return nil, err
	}
	arb, err := arbiter.New(cfg.arbiterConfig())
	if err != nil {
		return nil, err
	}

	log.Info("gaze engine ready",
		"patterns", len(patterns),
		"direction_commands", len(cfg.DirectionCommands))

	return &Engine{
		cfg:    cfg,
		blinks: blinks,
		filt:   filt,
		zones:  zones,
		scorer: scorer,
		seq:    seq,
		arb:    arb,
	}, nil
}

// Tick processes one gaze sample through every stage and returns the
// emitted command, if any. Samples must arrive in timestamp order.
func (e *Engine) Tick(s gaze.Sample) (command.Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	now := s.Timestamp

	// Stage 1: blink classification. A completed blink is classified by
	// duration; short blinks feed the click disambiguator, long closures
	// become assistive candidates directly.
	if done, ok := e.blinks.Update(s.EAR, s.Valid, now); ok {
		switch e.blinks.Classify(done.Duration) {
		case blink.Short:
			e.arb.NoteShortBlink(done.At)
		case blink.Emergency:
			e.arb.Submit(arbiter.Candidate{
				Kind:       command.KindEmergencyAlert,
				Confidence: 1.0,
				Source:     command.SourceBlink,
				At:         done.At,
			})
		case blink.Sleep:
			e.arb.Submit(arbiter.Candidate{
				Kind:       command.KindSleepMode,
				Confidence: 1.0,
				Source:     command.SourceBlink,
				At:         done.At,
			})
		}
	}

	// Stage 2: smoothing. Invalid samples predict without correcting.
	est := e.filt.Step(s)
	e.lastEst = est

	// Stage 3: zone classification on the smoothed position. Until the
	// filter has anchored on a valid sample there is no position to
	// classify.
	z := zone.Neutral
	if e.filt.Initialized() {
		z = e.zones.Classify(est.X, est.Y)
	}
	if z != e.currentZone || e.zoneSince.IsZero() {
		e.currentZone = z
		e.zoneSince = now
		e.zoneConfirmed = false
		e.lastScore = intent.Score{}
	}

	// Stage 4+5: once the dwell clears the confirmation threshold, score
	// intent; a confirmed event feeds the sequence matcher and becomes a
	// direction candidate. A RAPID verdict leaves the zone unconfirmed so
	// a longer hold can still succeed.
	if z != zone.Neutral && !e.zoneConfirmed {
		dwell := now.Sub(e.zoneSince)
		if dwell >= e.cfg.ConfirmDwell {
			sc := e.scorer.Score(dwell, est.Speed())
			e.lastScore = sc
			if sc.Label != intent.Rapid {
				e.zoneConfirmed = true
				e.scorer.RecordEvent(now)
				if match, ok := e.seq.Observe(z, now); ok {
					e.submitMatch(match, now)
				}
				if kind, ok := e.cfg.DirectionCommands[z]; ok {
					e.arb.Submit(arbiter.Candidate{
						Kind:       kind,
						Confidence: sc.Confidence,
						Source:     command.SourceDirection,
						At:         now,
					})
				}
			}
		}
	}

	// Sequence timeouts advance on the frame clock even without new
	// direction events.
	if match, ok := e.seq.Tick(now, z == zone.Neutral); ok {
		e.submitMatch(match, now)
	}

	// Stage 6: arbitration and dispatch gating.
	ev, emitted := e.arb.Tick(now, arbiter.Controls{
		Live:   e.controls.Live,
		Paused: e.controls.Paused,
	})

	e.frameAt = now
	e.perf.observe(start, now, emitted)
	return ev, emitted
}

func (e *Engine) submitMatch(m sequence.Match, now time.Time) {
	e.arb.Submit(arbiter.Candidate{
		Kind:       m.Pattern.Command,
		Confidence: 1.0,
		Source:     command.SourceSequence,
		At:         now,
	})
}

// ResetTimers clears all duration-derived state after an explicit
// no-detection signal from the upstream detector: blink episode, filter
// track, zone dwell and the sequence buffer. Cooldowns survive; they are
// a rate-limit on output, not a property of the input stream.
func (e *Engine) ResetTimers() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.blinks.Reset()
	e.filt.Reset()
	e.zones.Reset()
	e.scorer.Reset()
	e.seq.Reset()
	e.arb.Reset()
	e.currentZone = zone.Neutral
	e.zoneSince = time.Time{}
	e.zoneConfirmed = false
	e.lastScore = intent.Score{}
	e.lastEst = filter.Estimate{}
	log.Debug("detection lost, gaze timers reset")
}

// SetLive selects live execution over simulation for subsequent ticks.
func (e *Engine) SetLive(live bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.controls.Live != live {
		log.Info("execution mode changed", "live", live)
	}
	e.controls.Live = live
}

// SetPaused gates command dispatch for subsequent ticks.
func (e *Engine) SetPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.controls.Paused != paused {
		log.Info("dispatch pause changed", "paused", paused)
	}
	e.controls.Paused = paused
}

// Controls returns the current runtime toggles.
func (e *Engine) Controls() Controls {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.controls
}

// Patterns returns the active sequence pattern table.
func (e *Engine) Patterns() []sequence.Pattern {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.seq.Patterns()
}
