// Package zone classifies a smoothed gaze position into one of nine
// discrete direction zones (eight directions plus neutral).
//
// Classification is a pure function of position against four boundary
// lines; the Classifier adds hysteresis so a position must cross a
// boundary by a configurable margin before the zone changes, which keeps
// small jitter at a boundary from flickering between zones.
package zone

import "fmt"

// Zone is a discretized gaze direction region.
type Zone int

const (
	Neutral Zone = iota
	Up
	Down
	Left
	Right
	UpLeft
	UpRight
	DownLeft
	DownRight
)

var zoneNames = map[Zone]string{
	Neutral:   "NEUTRAL",
	Up:        "UP",
	Down:      "DOWN",
	Left:      "LEFT",
	Right:     "RIGHT",
	UpLeft:    "UP_LEFT",
	UpRight:   "UP_RIGHT",
	DownLeft:  "DOWN_LEFT",
	DownRight: "DOWN_RIGHT",
}

// String returns the canonical name of the zone.
func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE(%d)", int(z))
}

// Parse returns the zone with the given canonical name.
func Parse(name string) (Zone, error) {
	for z, n := range zoneNames {
		if n == name {
			return z, nil
		}
	}
	return Neutral, fmt.Errorf("unknown zone %q", name)
}

// Boundaries are the four threshold lines dividing normalized [0,1] gaze
// space into zones. A position left of Left is in a left zone, right of
// Right in a right zone, above Up (smaller y) in an up zone, below Down
// in a down zone. Diagonals are the intersection of two conditions.
type Boundaries struct {
	Left  float64
	Right float64
	Up    float64
	Down  float64
}

// Validate checks the boundaries describe a non-empty neutral region
// inside [0,1].
func (b Boundaries) Validate() error {
	for name, v := range map[string]float64{
		"left": b.Left, "right": b.Right, "up": b.Up, "down": b.Down,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("zone boundary %s=%.3f outside [0,1]", name, v)
		}
	}
	if b.Left >= b.Right {
		return fmt.Errorf("zone boundary left (%.3f) must be below right (%.3f)", b.Left, b.Right)
	}
	if b.Up >= b.Down {
		return fmt.Errorf("zone boundary up (%.3f) must be below down (%.3f)", b.Up, b.Down)
	}
	return nil
}

// Classifier assigns zones with hysteresis around the boundaries.
type Classifier struct {
	bounds  Boundaries
	margin  float64
	current Zone
}

// NewClassifier creates a zone classifier. The hysteresis margin is how
// far past a boundary the position must move to change the answer for
// that boundary; zero disables hysteresis.
func NewClassifier(bounds Boundaries, hysteresis float64) (*Classifier, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if hysteresis < 0 {
		return nil, fmt.Errorf("zone hysteresis %.3f must not be negative", hysteresis)
	}
	if bounds.Left+hysteresis >= bounds.Right-hysteresis ||
		bounds.Up+hysteresis >= bounds.Down-hysteresis {
		return nil, fmt.Errorf("zone hysteresis %.3f leaves no neutral region", hysteresis)
	}
	return &Classifier{bounds: bounds, margin: hysteresis}, nil
}

// Classify returns the zone for a smoothed position. The previously
// returned zone is sticky: each of the four boundary conditions that was
// active last time stays active until the position backs off by the
// margin, and an inactive condition activates only once the position
// crosses by the margin.
func (c *Classifier) Classify(x, y float64) Zone {
	isLeft := x < c.threshold(c.bounds.Left, c.leftActive(), -1)
	isRight := x > c.threshold(c.bounds.Right, c.rightActive(), +1)
	isUp := y < c.threshold(c.bounds.Up, c.upActive(), -1)
	isDown := y > c.threshold(c.bounds.Down, c.downActive(), +1)

	c.current = compose(isLeft, isRight, isUp, isDown)
	return c.current
}

// Current returns the last classified zone without reclassifying.
func (c *Classifier) Current() Zone {
	return c.current
}

// Reset returns the classifier to neutral, dropping hysteresis state.
func (c *Classifier) Reset() {
	c.current = Neutral
}

// threshold returns the effective boundary for one condition. dir is -1
// for "below boundary" conditions (left, up) and +1 for "above boundary"
// conditions (right, down). An active condition gets a relaxed threshold,
// an inactive one a tightened threshold, each by the margin.
func (c *Classifier) threshold(boundary float64, active bool, dir int) float64 {
	if active {
		return boundary - float64(dir)*c.margin
	}
	return boundary + float64(dir)*c.margin
}

func (c *Classifier) leftActive() bool {
	return c.current == Left || c.current == UpLeft || c.current == DownLeft
}

func (c *Classifier) rightActive() bool {
	return c.current == Right || c.current == UpRight || c.current == DownRight
}

func (c *Classifier) upActive() bool {
	return c.current == Up || c.current == UpLeft || c.current == UpRight
}

func (c *Classifier) downActive() bool {
	return c.current == Down || c.current == DownLeft || c.current == DownRight
}

// ClassifyAt is the pure, stateless classification against the given
// boundaries with no hysteresis.
func ClassifyAt(b Boundaries, x, y float64) Zone {
	return compose(x < b.Left, x > b.Right, y < b.Up, y > b.Down)
}

func compose(isLeft, isRight, isUp, isDown bool) Zone {
	switch {
	case isUp && isLeft:
		return UpLeft
	case isUp && isRight:
		return UpRight
	case isDown && isLeft:
		return DownLeft
	case isDown && isRight:
		return DownRight
	case isUp:
		return Up
	case isDown:
		return Down
	case isLeft:
		return Left
	case isRight:
		return Right
	}
	return Neutral
}
