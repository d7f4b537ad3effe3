package engine

import (
	"fmt"
	"time"

	"github.com/sightline/go-sightline/pkg/arbiter"
	"github.com/sightline/go-sightline/pkg/command"
	"github.com/sightline/go-sightline/pkg/sequence"
	"github.com/sightline/go-sightline/pkg/zone"
)

// Config collects the tuning parameters of every pipeline stage. It is
// validated once at construction and never mutated afterwards; runtime
// toggles (pause, live mode) live in Controls instead.
type Config struct {
	// Blink classification.
	EARThreshold       float64
	BlinkMinFrames     int
	LongBlinkThreshold time.Duration
	SleepThreshold     time.Duration
	DoubleBlinkWindow  time.Duration

	// Position/velocity filter.
	ProcessNoise     float64
	MeasurementNoise float64

	// Direction zones.
	Bounds         zone.Boundaries
	ZoneHysteresis float64

	// Intent scoring.
	QuickGlance      time.Duration
	IntentionalDwell time.Duration
	SlowVelocity     float64
	FastVelocity     float64

	// ConfirmDwell is how long the gaze must hold a non-neutral zone
	// before the intent scorer is consulted at all.
	ConfirmDwell time.Duration

	// Sequence matching. Patterns nil means the built-in table.
	Patterns        []sequence.Pattern
	SequenceTimeout time.Duration
	SequenceIdle    time.Duration

	// Arbitration.
	MinConfidence   float64
	CommandCooldown time.Duration
	GestureCooldown time.Duration
	ConfirmKinds    []command.Kind
	ConfirmWindow   time.Duration
	ConfirmPattern  []arbiter.ConfirmStep

	// DirectionCommands maps a confirmed zone to the command it issues.
	// Zones absent from the map produce no direction command.
	DirectionCommands map[zone.Zone]command.Kind
}

// DefaultConfig returns the balanced profile suitable for most users.
func DefaultConfig() Config {
	return Config{
		EARThreshold:       0.21,
		BlinkMinFrames:     2,
		LongBlinkThreshold: 3 * time.Second,
		SleepThreshold:     5 * time.Second,
		DoubleBlinkWindow:  600 * time.Millisecond,

		ProcessNoise:     1e-3,
		MeasurementNoise: 1e-2,

		Bounds:         zone.Boundaries{Left: 0.35, Right: 0.65, Up: 0.30, Down: 0.70},
		ZoneHysteresis: 0.02,

		QuickGlance:      200 * time.Millisecond,
		IntentionalDwell: time.Second,
		SlowVelocity:     0.5,
		FastVelocity:     4.0,
		ConfirmDwell:     300 * time.Millisecond,

		SequenceTimeout: 3 * time.Second,
		SequenceIdle:    2 * time.Second,

		MinConfidence:   0.5,
		CommandCooldown: 600 * time.Millisecond,
		GestureCooldown: 400 * time.Millisecond,
		ConfirmWindow:   3 * time.Second,
		ConfirmPattern: []arbiter.ConfirmStep{
			{Max: 250 * time.Millisecond},
			{Min: 300 * time.Millisecond, Max: 800 * time.Millisecond},
		},

		DirectionCommands: map[zone.Zone]command.Kind{
			zone.Left:      command.KindLeft,
			zone.Right:     command.KindRight,
			zone.Up:        command.KindScrollUp,
			zone.Down:      command.KindScrollDown,
			zone.UpLeft:    command.KindVolumeUp,
			zone.UpRight:   command.KindBrightnessUp,
			zone.DownLeft:  command.KindBack,
			zone.DownRight: command.KindHome,
		},
	}
}

// ResponsiveConfig trades noise rejection for latency: shorter dwell
// requirements and cooldowns for practiced users.
func ResponsiveConfig() Config {
	c := DefaultConfig()
	c.QuickGlance = 120 * time.Millisecond
	c.IntentionalDwell = 600 * time.Millisecond
	c.ConfirmDwell = 180 * time.Millisecond
	c.CommandCooldown = 400 * time.Millisecond
	c.GestureCooldown = 250 * time.Millisecond
	c.DoubleBlinkWindow = 450 * time.Millisecond
	return c
}

// PowerSaverConfig trades latency for stability: longer dwells and
// cooldowns, and critical commands gated behind blink confirmation.
// Suited to fatigued users or noisy detection conditions.
func PowerSaverConfig() Config {
	c := DefaultConfig()
	c.QuickGlance = 300 * time.Millisecond
	c.IntentionalDwell = 1500 * time.Millisecond
	c.ConfirmDwell = 500 * time.Millisecond
	c.CommandCooldown = time.Second
	c.GestureCooldown = 800 * time.Millisecond
	c.MinConfidence = 0.6
	c.ConfirmKinds = []command.Kind{command.KindEmergencyAlert, command.KindSleepMode}
	return c
}

// Validate fails fast on any parameter a pipeline stage would reject,
// plus the cross-stage constraints no single stage can see.
func (c Config) Validate() error {
	if c.EARThreshold <= 0 || c.EARThreshold >= 1 {
		return fmt.Errorf("eye aspect ratio threshold %.3f outside (0,1)", c.EARThreshold)
	}
	if c.BlinkMinFrames < 1 {
		return fmt.Errorf("blink confirmation frames %d must be at least 1", c.BlinkMinFrames)
	}
	if c.LongBlinkThreshold <= 0 || c.SleepThreshold <= c.LongBlinkThreshold {
		return fmt.Errorf("blink thresholds must satisfy 0 < long (%v) < sleep (%v)",
			c.LongBlinkThreshold, c.SleepThreshold)
	}
	if c.ProcessNoise <= 0 || c.MeasurementNoise <= 0 {
		return fmt.Errorf("filter noise parameters must be positive")
	}
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if c.ZoneHysteresis < 0 || c.ZoneHysteresis >= 0.5 {
		return fmt.Errorf("zone hysteresis %.3f outside [0,0.5)", c.ZoneHysteresis)
	}
	if c.QuickGlance <= 0 || c.IntentionalDwell <= c.QuickGlance {
		return fmt.Errorf("dwell thresholds must satisfy 0 < quick glance (%v) < intentional (%v)",
			c.QuickGlance, c.IntentionalDwell)
	}
	if c.FastVelocity <= c.SlowVelocity || c.SlowVelocity < 0 {
		return fmt.Errorf("velocity thresholds must satisfy 0 <= slow (%.2f) < fast (%.2f)",
			c.SlowVelocity, c.FastVelocity)
	}
	if c.ConfirmDwell <= 0 {
		return fmt.Errorf("confirmation dwell %v must be positive", c.ConfirmDwell)
	}
	if c.SequenceTimeout <= 0 || c.SequenceIdle <= 0 {
		return fmt.Errorf("sequence windows must be positive")
	}
	for z := range c.DirectionCommands {
		if z == zone.Neutral {
			return fmt.Errorf("neutral zone cannot map to a direction command")
		}
	}
	arb := c.arbiterConfig()
	return arb.Validate()
}
