package engine

import (
	"testing"
	"time"

	"github.com/sightline/go-sightline/pkg/command"
	"github.com/sightline/go-sightline/pkg/gaze"
)

// frameStep approximates a 30fps detector.
const frameStep = 33 * time.Millisecond

// testConfig speeds filter convergence so synthetic position jumps
// settle within a frame or two.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ProcessNoise = 1e-2
	cfg.MeasurementNoise = 1e-3
	return cfg
}

type harness struct {
	t   *testing.T
	e   *Engine
	now time.Time
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	e, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return &harness{t: t, e: e, now: time.Unix(1000, 0)}
}

// hold feeds frames at a fixed gaze position and eye aspect ratio for
// the given duration, collecting every emitted command.
func (h *harness) hold(x, y, ear float64, d time.Duration) []command.Event {
	var out []command.Event
	for elapsed := time.Duration(0); elapsed < d; elapsed += frameStep {
		h.now = h.now.Add(frameStep)
		ev, ok := h.e.Tick(gaze.Sample{Timestamp: h.now, X: x, Y: y, EAR: ear, Valid: true})
		if ok {
			out = append(out, ev)
		}
	}
	return out
}

const earOpen = 0.30
const earClosed = 0.10

func kinds(events []command.Event) []command.Kind {
	out := make([]command.Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestEngine_DwellEmitsDirectionCommand(t *testing.T) {
	h := newHarness(t, testConfig())

	events := h.hold(0.2, 0.5, earOpen, time.Second)
	if len(events) != 1 {
		t.Fatalf("expected exactly one command, got %v", kinds(events))
	}
	if events[0].Kind != command.KindLeft {
		t.Errorf("emitted %v, want LEFT", events[0].Kind)
	}
	if events[0].Source != command.SourceDirection {
		t.Errorf("source = %v, want direction", events[0].Source)
	}
}

func TestEngine_QuickGlanceEmitsNothing(t *testing.T) {
	h := newHarness(t, testConfig())

	events := h.hold(0.2, 0.5, earOpen, 150*time.Millisecond)
	events = append(events, h.hold(0.5, 0.5, earOpen, time.Second)...)
	if len(events) != 0 {
		t.Errorf("quick glance produced %v", kinds(events))
	}
}

func TestEngine_DiagonalMapping(t *testing.T) {
	h := newHarness(t, testConfig())

	// Upper-left corner: x left of the left boundary, y above the up
	// boundary.
	events := h.hold(0.1, 0.1, earOpen, time.Second)
	if len(events) != 1 || events[0].Kind != command.KindVolumeUp {
		t.Errorf("upper-left gaze emitted %v, want VOLUME_UP", kinds(events))
	}
}

func TestEngine_SingleBlinkClick(t *testing.T) {
	h := newHarness(t, testConfig())

	var events []command.Event
	events = append(events, h.hold(0.5, 0.5, earOpen, 300*time.Millisecond)...)
	events = append(events, h.hold(0.5, 0.5, earClosed, 100*time.Millisecond)...)
	events = append(events, h.hold(0.5, 0.5, earOpen, 1200*time.Millisecond)...)

	if len(events) != 1 {
		t.Fatalf("expected exactly one command, got %v", kinds(events))
	}
	if events[0].Kind != command.KindClick {
		t.Errorf("emitted %v, want CLICK", events[0].Kind)
	}
}

func TestEngine_DoubleBlinkSingleDoubleClick(t *testing.T) {
	h := newHarness(t, testConfig())

	var events []command.Event
	events = append(events, h.hold(0.5, 0.5, earOpen, 300*time.Millisecond)...)
	events = append(events, h.hold(0.5, 0.5, earClosed, 100*time.Millisecond)...)
	events = append(events, h.hold(0.5, 0.5, earOpen, 200*time.Millisecond)...)
	events = append(events, h.hold(0.5, 0.5, earClosed, 100*time.Millisecond)...)
	events = append(events, h.hold(0.5, 0.5, earOpen, 1500*time.Millisecond)...)

	if len(events) != 1 {
		t.Fatalf("expected exactly one command, got %v", kinds(events))
	}
	if events[0].Kind != command.KindDoubleClick {
		t.Errorf("emitted %v, want DOUBLE_CLICK", events[0].Kind)
	}
}

func TestEngine_LongClosures(t *testing.T) {
	cases := []struct {
		name   string
		closed time.Duration
		want   command.Kind
	}{
		{"emergency", 3300 * time.Millisecond, command.KindEmergencyAlert},
		{"sleep", 5300 * time.Millisecond, command.KindSleepMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, testConfig())

			var events []command.Event
			events = append(events, h.hold(0.5, 0.5, earOpen, 300*time.Millisecond)...)
			events = append(events, h.hold(0.5, 0.5, earClosed, tc.closed)...)
			events = append(events, h.hold(0.5, 0.5, earOpen, 500*time.Millisecond)...)

			if len(events) != 1 {
				t.Fatalf("expected exactly one command, got %v", kinds(events))
			}
			if events[0].Kind != tc.want {
				t.Errorf("emitted %v, want %v", events[0].Kind, tc.want)
			}
		})
	}
}

func TestEngine_SequencePattern(t *testing.T) {
	h := newHarness(t, testConfig())

	// Look left, right, left with holds long enough to confirm each and
	// to clear the cooldown between confirmations.
	var events []command.Event
	events = append(events, h.hold(0.2, 0.5, earOpen, 800*time.Millisecond)...)
	events = append(events, h.hold(0.8, 0.5, earOpen, 800*time.Millisecond)...)
	events = append(events, h.hold(0.2, 0.5, earOpen, 800*time.Millisecond)...)

	if len(events) == 0 {
		t.Fatal("expected commands")
	}
	last := events[len(events)-1]
	if last.Kind != command.KindCallNurse {
		t.Errorf("final command %v, want CALL_NURSE (got %v)", last.Kind, kinds(events))
	}
	if last.Source != command.SourceSequence {
		t.Errorf("source = %v, want sequence", last.Source)
	}
	if buf := h.e.Snapshot().SequenceBuffer; len(buf) != 0 {
		t.Errorf("sequence buffer not cleared after match: %v", buf)
	}
}

func TestEngine_PauseGatesDispatch(t *testing.T) {
	h := newHarness(t, testConfig())

	h.e.SetPaused(true)
	if events := h.hold(0.2, 0.5, earOpen, time.Second); len(events) != 0 {
		t.Errorf("paused engine emitted %v", kinds(events))
	}
	if !h.e.Snapshot().Paused {
		t.Error("snapshot does not report paused")
	}

	h.e.SetPaused(false)
	events := h.hold(0.8, 0.5, earOpen, time.Second)
	if len(events) != 1 || events[0].Kind != command.KindRight {
		t.Errorf("after unpause got %v, want RIGHT", kinds(events))
	}
}

func TestEngine_ResetTimersRestartsDwell(t *testing.T) {
	h := newHarness(t, testConfig())

	if events := h.hold(0.2, 0.5, earOpen, 250*time.Millisecond); len(events) != 0 {
		t.Fatalf("premature emission %v", kinds(events))
	}

	h.e.ResetTimers()
	snap := h.e.Snapshot()
	if snap.Zone != "NEUTRAL" {
		t.Errorf("zone after reset = %q", snap.Zone)
	}
	if len(snap.SequenceBuffer) != 0 {
		t.Errorf("sequence buffer after reset: %v", snap.SequenceBuffer)
	}

	// The dwell clock restarted; another sub-threshold hold stays quiet.
	if events := h.hold(0.2, 0.5, earOpen, 250*time.Millisecond); len(events) != 0 {
		t.Errorf("dwell survived reset: %v", kinds(events))
	}
	// A full hold from the reset confirms normally.
	if events := h.hold(0.2, 0.5, earOpen, 500*time.Millisecond); len(events) != 1 {
		t.Errorf("expected one command after full dwell, got %v", kinds(events))
	}
}

func TestEngine_SnapshotCounters(t *testing.T) {
	h := newHarness(t, testConfig())
	h.hold(0.5, 0.5, earOpen, time.Second)

	snap := h.e.Snapshot()
	if snap.Ticks == 0 {
		t.Error("tick counter not advancing")
	}
	if snap.SampleRate < 20 || snap.SampleRate > 40 {
		t.Errorf("sample rate %.1f, want about 30", snap.SampleRate)
	}
	if snap.Zone != "NEUTRAL" {
		t.Errorf("zone = %q", snap.Zone)
	}
	if snap.BlinkState != "OPEN" {
		t.Errorf("blink state = %q", snap.BlinkState)
	}
}

func TestPresetsValid(t *testing.T) {
	presets := map[string]Config{
		"default":    DefaultConfig(),
		"responsive": ResponsiveConfig(),
		"powersaver": PowerSaverConfig(),
	}
	for name, cfg := range presets {
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s preset invalid: %v", name, err)
		}
		if _, err := New(cfg); err != nil {
			t.Errorf("%s preset rejected by constructor: %v", name, err)
		}
	}
}

func TestConfigValidate_Rejections(t *testing.T) {
	cases := map[string]func(*Config){
		"ear threshold":      func(c *Config) { c.EARThreshold = 1.2 },
		"blink frames":       func(c *Config) { c.BlinkMinFrames = 0 },
		"inverted blink":     func(c *Config) { c.SleepThreshold = c.LongBlinkThreshold },
		"zero noise":         func(c *Config) { c.ProcessNoise = 0 },
		"inverted bounds":    func(c *Config) { c.Bounds.Left = 0.9 },
		"hysteresis":         func(c *Config) { c.ZoneHysteresis = 0.5 },
		"inverted dwell":     func(c *Config) { c.IntentionalDwell = c.QuickGlance },
		"inverted velocity":  func(c *Config) { c.FastVelocity = c.SlowVelocity },
		"zero confirm dwell": func(c *Config) { c.ConfirmDwell = 0 },
		"zero seq timeout":   func(c *Config) { c.SequenceTimeout = 0 },
		"zero cooldown":      func(c *Config) { c.CommandCooldown = 0 },
		"neutral mapping":    func(c *Config) { c.DirectionCommands[0] = command.KindHome },
		"confidence range":   func(c *Config) { c.MinConfidence = -0.1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}
