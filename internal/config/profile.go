package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sightline/go-sightline/pkg/arbiter"
	"github.com/sightline/go-sightline/pkg/command"
	"github.com/sightline/go-sightline/pkg/engine"
	"github.com/sightline/go-sightline/pkg/sequence"
	"github.com/sightline/go-sightline/pkg/zone"
)

// Duration unmarshals YAML duration strings like "300ms" or "1.5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Profile is a per-user tuning overlay. Every field is optional; absent
// fields keep the preset value.
type Profile struct {
	Preset string `yaml:"preset"`

	EARThreshold      *float64  `yaml:"ear_threshold"`
	BlinkMinFrames    *int      `yaml:"blink_min_frames"`
	LongBlink         *Duration `yaml:"long_blink"`
	SleepClosure      *Duration `yaml:"sleep_closure"`
	DoubleBlinkWindow *Duration `yaml:"double_blink_window"`

	ProcessNoise     *float64 `yaml:"process_noise"`
	MeasurementNoise *float64 `yaml:"measurement_noise"`

	BoundLeft      *float64 `yaml:"bound_left"`
	BoundRight     *float64 `yaml:"bound_right"`
	BoundUp        *float64 `yaml:"bound_up"`
	BoundDown      *float64 `yaml:"bound_down"`
	ZoneHysteresis *float64 `yaml:"zone_hysteresis"`

	QuickGlance      *Duration `yaml:"quick_glance"`
	IntentionalDwell *Duration `yaml:"intentional_dwell"`
	SlowVelocity     *float64  `yaml:"slow_velocity"`
	FastVelocity     *float64  `yaml:"fast_velocity"`
	ConfirmDwell     *Duration `yaml:"confirm_dwell"`

	PatternDir      string    `yaml:"pattern_dir"`
	SequenceTimeout *Duration `yaml:"sequence_timeout"`
	SequenceIdle    *Duration `yaml:"sequence_idle"`

	MinConfidence   *float64      `yaml:"min_confidence"`
	CommandCooldown *Duration     `yaml:"command_cooldown"`
	GestureCooldown *Duration     `yaml:"gesture_cooldown"`
	ConfirmKinds    []string      `yaml:"confirm_kinds"`
	ConfirmWindow   *Duration     `yaml:"confirm_window"`
	ConfirmPattern  []ConfirmStep `yaml:"confirm_pattern"`

	DirectionCommands map[string]string `yaml:"direction_commands"`
}

// ConfirmStep is one inter-blink gap of the confirmation gesture: the
// gap must fall within [min, max].
type ConfirmStep struct {
	Min Duration `yaml:"min"`
	Max Duration `yaml:"max"`
}

// LoadProfile reads and parses a YAML tuning profile.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return p, nil
}

// Apply overlays the profile's set fields onto the base configuration.
// The returned config still goes through engine validation; Apply only
// rejects what it cannot translate at all.
func (p Profile) Apply(base engine.Config) (engine.Config, error) {
	cfg := base

	if p.EARThreshold != nil {
		cfg.EARThreshold = *p.EARThreshold
	}
	if p.BlinkMinFrames != nil {
		cfg.BlinkMinFrames = *p.BlinkMinFrames
	}
	if p.LongBlink != nil {
		cfg.LongBlinkThreshold = time.Duration(*p.LongBlink)
	}
	if p.SleepClosure != nil {
		cfg.SleepThreshold = time.Duration(*p.SleepClosure)
	}
	if p.DoubleBlinkWindow != nil {
		cfg.DoubleBlinkWindow = time.Duration(*p.DoubleBlinkWindow)
	}

	if p.ProcessNoise != nil {
		cfg.ProcessNoise = *p.ProcessNoise
	}
	if p.MeasurementNoise != nil {
		cfg.MeasurementNoise = *p.MeasurementNoise
	}

	if p.BoundLeft != nil {
		cfg.Bounds.Left = *p.BoundLeft
	}
	if p.BoundRight != nil {
		cfg.Bounds.Right = *p.BoundRight
	}
	if p.BoundUp != nil {
		cfg.Bounds.Up = *p.BoundUp
	}
	if p.BoundDown != nil {
		cfg.Bounds.Down = *p.BoundDown
	}
	if p.ZoneHysteresis != nil {
		cfg.ZoneHysteresis = *p.ZoneHysteresis
	}

	if p.QuickGlance != nil {
		cfg.QuickGlance = time.Duration(*p.QuickGlance)
	}
	if p.IntentionalDwell != nil {
		cfg.IntentionalDwell = time.Duration(*p.IntentionalDwell)
	}
	if p.SlowVelocity != nil {
		cfg.SlowVelocity = *p.SlowVelocity
	}
	if p.FastVelocity != nil {
		cfg.FastVelocity = *p.FastVelocity
	}
	if p.ConfirmDwell != nil {
		cfg.ConfirmDwell = time.Duration(*p.ConfirmDwell)
	}

	if p.PatternDir != "" {
		patterns, err := sequence.LoadFromDirectory(p.PatternDir)
		if err != nil {
			return engine.Config{}, fmt.Errorf("loading pattern dir: %w", err)
		}
		cfg.Patterns = patterns
	}
	if p.SequenceTimeout != nil {
		cfg.SequenceTimeout = time.Duration(*p.SequenceTimeout)
	}
	if p.SequenceIdle != nil {
		cfg.SequenceIdle = time.Duration(*p.SequenceIdle)
	}

	if p.MinConfidence != nil {
		cfg.MinConfidence = *p.MinConfidence
	}
	if p.CommandCooldown != nil {
		cfg.CommandCooldown = time.Duration(*p.CommandCooldown)
	}
	if p.GestureCooldown != nil {
		cfg.GestureCooldown = time.Duration(*p.GestureCooldown)
	}
	if p.ConfirmKinds != nil {
		kinds := make([]command.Kind, len(p.ConfirmKinds))
		for i, k := range p.ConfirmKinds {
			kinds[i] = command.Kind(k)
		}
		cfg.ConfirmKinds = kinds
	}
	if p.ConfirmWindow != nil {
		cfg.ConfirmWindow = time.Duration(*p.ConfirmWindow)
	}
	if p.ConfirmPattern != nil {
		pattern := make([]arbiter.ConfirmStep, len(p.ConfirmPattern))
		for i, s := range p.ConfirmPattern {
			pattern[i] = arbiter.ConfirmStep{Min: time.Duration(s.Min), Max: time.Duration(s.Max)}
		}
		cfg.ConfirmPattern = pattern
	}

	if p.DirectionCommands != nil {
		mapping := make(map[zone.Zone]command.Kind, len(p.DirectionCommands))
		for name, kind := range p.DirectionCommands {
			z, err := zone.Parse(name)
			if err != nil {
				return engine.Config{}, fmt.Errorf("direction command mapping: %w", err)
			}
			mapping[z] = command.Kind(kind)
		}
		cfg.DirectionCommands = mapping
	}

	return cfg, nil
}
