package engine

import (
	"time"

	"github.com/sightline/go-sightline/pkg/zone"
)

// Snapshot is a copy of the observable engine state for monitoring
// surfaces. It shares nothing with the live pipeline.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	BlinkState    string  `json:"blink_state"`
	BlinkProgress float64 `json:"blink_progress"`

	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Speed float64 `json:"speed"`

	Zone       string        `json:"zone"`
	Dwell      time.Duration `json:"dwell"`
	Confidence float64       `json:"confidence"`
	Intent     string        `json:"intent"`

	SequenceBuffer []string `json:"sequence_buffer"`

	CooldownRemaining   time.Duration `json:"cooldown_remaining"`
	PendingConfirmation string        `json:"pending_confirmation,omitempty"`

	Paused bool `json:"paused"`
	Live   bool `json:"live"`

	Ticks           uint64        `json:"ticks"`
	CommandsEmitted uint64        `json:"commands_emitted"`
	AvgTickTime     time.Duration `json:"avg_tick_time"`
	SampleRate      float64       `json:"sample_rate"`
}

// Snapshot copies the current engine state. Safe to call from any
// goroutine.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.frameAt
	var dwell time.Duration
	if e.currentZone != zone.Neutral && !e.zoneSince.IsZero() {
		dwell = now.Sub(e.zoneSince)
	}

	buf := e.seq.Buffer()
	names := make([]string, len(buf))
	for i, z := range buf {
		names[i] = z.String()
	}

	snap := Snapshot{
		Timestamp:         now,
		BlinkState:        e.blinks.State().String(),
		BlinkProgress:     e.blinks.Progress(now),
		X:                 e.lastEst.X,
		Y:                 e.lastEst.Y,
		VX:                e.lastEst.VX,
		VY:                e.lastEst.VY,
		Speed:             e.lastEst.Speed(),
		Zone:              e.currentZone.String(),
		Dwell:             dwell,
		Confidence:        e.lastScore.Confidence,
		Intent:            e.lastScore.Label.String(),
		SequenceBuffer:    names,
		CooldownRemaining: e.arb.CooldownRemaining(now),
		Paused:            e.controls.Paused,
		Live:              e.controls.Live,
		Ticks:             e.perf.ticks,
		CommandsEmitted:   e.perf.emitted,
		AvgTickTime:       e.perf.avgTick,
		SampleRate:        e.perf.rate,
	}
	if kind, ok := e.arb.PendingConfirmation(); ok {
		snap.PendingConfirmation = string(kind)
	}
	return snap
}

// perfCounters tracks processing cost and effective sample rate with
// exponential moving averages, cheap enough for the per-frame path.
type perfCounters struct {
	ticks    uint64
	emitted  uint64
	avgTick  time.Duration
	rate     float64
	lastSeen time.Time
}

const perfAlpha = 0.1

func (p *perfCounters) observe(start time.Time, sampleAt time.Time, emitted bool) {
	p.ticks++
	if emitted {
		p.emitted++
	}

	cost := time.Since(start)
	if p.avgTick == 0 {
		p.avgTick = cost
	} else {
		p.avgTick += time.Duration(perfAlpha * float64(cost-p.avgTick))
	}

	if !p.lastSeen.IsZero() {
		if dt := sampleAt.Sub(p.lastSeen).Seconds(); dt > 0 {
			inst := 1 / dt
			if p.rate == 0 {
				p.rate = inst
			} else {
				p.rate += perfAlpha * (inst - p.rate)
			}
		}
	}
	p.lastSeen = sampleAt
}
