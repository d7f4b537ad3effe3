// Package filter smooths the raw gaze position and estimates velocity.
//
// The estimator is a constant-velocity Kalman filter over [x, y, vx, vy].
// Because the motion model treats the axes independently and only
// position is measured, the 4-state filter decomposes into two identical
// per-axis filters with 2x2 covariances, written out in scalar form.
//
// Invalid samples (eyes closed, occlusion) run the predict step only, so
// short dropouts produce continuity instead of freezing or snapping.
// Predicted uncertainty growth is capped so a long invalid run cannot
// diverge the filter.
package filter

import (
	"fmt"
	"math"
	"time"

	"github.com/sightline/go-sightline/pkg/gaze"
)

// Estimate is the filter output for one tick: a smoothed position and the
// estimated velocity in normalized screen units per second.
type Estimate struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Speed returns the velocity magnitude.
func (e Estimate) Speed() float64 {
	return math.Hypot(e.VX, e.VY)
}

// maxVariance caps covariance growth during invalid runs. Normalized
// coordinates live in [0,1], so a variance of 4 already means "anywhere".
const maxVariance = 4.0

// axis is the per-axis state: position, velocity, and the symmetric 2x2
// covariance [p00 p01; p01 p11].
type axis struct {
	pos, vel      float64
	p00, p01, p11 float64
}

// predict advances the axis by dt seconds under the constant-velocity
// model and inflates uncertainty by the process noise q.
func (a *axis) predict(dt, q float64) {
	a.pos += a.vel * dt

	// P = F P Fᵀ + Q with F = [1 dt; 0 1].
	p00 := a.p00 + dt*(a.p01+a.p01+dt*a.p11) + q
	p01 := a.p01 + dt*a.p11
	p11 := a.p11 + q

	a.p00 = math.Min(p00, maxVariance)
	a.p11 = math.Min(p11, maxVariance)

	// Keep the matrix positive-definite after capping: |p01| may not
	// exceed the geometric mean of the diagonal.
	limit := math.Sqrt(a.p00 * a.p11)
	a.p01 = math.Max(-limit, math.Min(p01, limit))
}

// update blends the prediction with a position measurement z, weighted by
// the ratio of predicted uncertainty to measurement noise r.
func (a *axis) update(z, r float64) {
	innovation := z - a.pos
	s := a.p00 + r
	k0 := a.p00 / s // gain on position
	k1 := a.p01 / s // gain on velocity

	a.pos += k0 * innovation
	a.vel += k1 * innovation

	// P = (I - K H) P, kept symmetric.
	p00 := (1 - k0) * a.p00
	p01 := (1 - k0) * a.p01
	p11 := a.p11 - k1*a.p01

	a.p00 = p00
	a.p01 = p01
	a.p11 = p11
}

// Filter is the position/velocity estimator. It owns its state
// exclusively; downstream stages receive value snapshots.
type Filter struct {
	q float64 // process noise (per second)
	r float64 // measurement noise

	x, y        axis
	initialized bool
	lastTime    time.Time
}

// New creates a filter. Lower process noise yields smoother but more
// lagged tracking; measurement noise reflects detector jitter.
func New(processNoise, measurementNoise float64) (*Filter, error) {
	if processNoise <= 0 {
		return nil, fmt.Errorf("filter process noise %g must be positive", processNoise)
	}
	if measurementNoise <= 0 {
		return nil, fmt.Errorf("filter measurement noise %g must be positive", measurementNoise)
	}
	return &Filter{q: processNoise, r: measurementNoise}, nil
}

// Step advances the filter by one sample and returns the new estimate.
// Valid samples run predict then update; invalid samples run predict only.
func (f *Filter) Step(s gaze.Sample) Estimate {
	if !f.initialized {
		if !s.Valid {
			// Nothing to anchor on yet.
			return Estimate{}
		}
		f.x = axis{pos: s.X, p00: 1, p11: 1}
		f.y = axis{pos: s.Y, p00: 1, p11: 1}
		f.initialized = true
		f.lastTime = s.Timestamp
		return f.estimate()
	}

	dt := s.Timestamp.Sub(f.lastTime).Seconds()
	if dt < 0 {
		dt = 0
	}
	f.lastTime = s.Timestamp

	f.x.predict(dt, f.q*dt)
	f.y.predict(dt, f.q*dt)

	if s.Valid {
		f.x.update(s.X, f.r)
		f.y.update(s.Y, f.r)
	}

	return f.estimate()
}

// Current returns the latest estimate without advancing the filter.
func (f *Filter) Current() Estimate {
	return f.estimate()
}

// Initialized reports whether the filter has seen a valid sample.
func (f *Filter) Initialized() bool {
	return f.initialized
}

// Reset discards all state. The next valid sample re-anchors the filter.
func (f *Filter) Reset() {
	*f = Filter{q: f.q, r: f.r}
}

func (f *Filter) estimate() Estimate {
	return Estimate{X: f.x.pos, Y: f.y.pos, VX: f.x.vel, VY: f.y.vel}
}
