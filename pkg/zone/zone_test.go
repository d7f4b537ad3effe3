package zone

import "testing"

func defaultBounds() Boundaries {
	return Boundaries{Left: 0.35, Right: 0.65, Up: 0.30, Down: 0.70}
}

func TestClassifyAt_AllZones(t *testing.T) {
	b := defaultBounds()

	tests := []struct {
		name string
		x, y float64
		want Zone
	}{
		{"center", 0.5, 0.5, Neutral},
		{"left", 0.1, 0.5, Left},
		{"right", 0.9, 0.5, Right},
		{"up", 0.5, 0.1, Up},
		{"down", 0.5, 0.9, Down},
		{"up left", 0.1, 0.1, UpLeft},
		{"up right", 0.9, 0.1, UpRight},
		{"down left", 0.1, 0.9, DownLeft},
		{"down right", 0.9, 0.9, DownRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAt(b, tt.x, tt.y); got != tt.want {
				t.Errorf("ClassifyAt(%.2f, %.2f) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestClassifier_Idempotent(t *testing.T) {
	c, err := NewClassifier(defaultBounds(), 0.02)
	if err != nil {
		t.Fatal(err)
	}

	positions := [][2]float64{
		{0.1, 0.5}, {0.5, 0.5}, {0.9, 0.9}, {0.34, 0.5}, {0.33, 0.29},
	}
	for _, p := range positions {
		first := c.Classify(p[0], p[1])
		for i := 0; i < 5; i++ {
			if got := c.Classify(p[0], p[1]); got != first {
				t.Errorf("reclassifying (%.2f, %.2f) gave %v after %v", p[0], p[1], got, first)
			}
		}
	}
}

func TestClassifier_HysteresisAbsorbsBoundaryFlicker(t *testing.T) {
	c, err := NewClassifier(defaultBounds(), 0.02)
	if err != nil {
		t.Fatal(err)
	}

	// Move well into the left zone.
	if got := c.Classify(0.2, 0.5); got != Left {
		t.Fatalf("expected LEFT, got %v", got)
	}

	// Jitter just past the boundary but within the margin: stays LEFT.
	if got := c.Classify(0.36, 0.5); got != Left {
		t.Errorf("expected hysteresis to hold LEFT at 0.36, got %v", got)
	}

	// Crossing the boundary by more than the margin releases the zone.
	if got := c.Classify(0.40, 0.5); got != Neutral {
		t.Errorf("expected NEUTRAL at 0.40, got %v", got)
	}

	// From neutral, the boundary itself is not enough to re-enter.
	if got := c.Classify(0.34, 0.5); got != Neutral {
		t.Errorf("expected hysteresis to hold NEUTRAL at 0.34, got %v", got)
	}
	if got := c.Classify(0.32, 0.5); got != Left {
		t.Errorf("expected LEFT at 0.32, got %v", got)
	}
}

func TestClassifier_Reset(t *testing.T) {
	c, err := NewClassifier(defaultBounds(), 0.02)
	if err != nil {
		t.Fatal(err)
	}
	c.Classify(0.1, 0.1)
	c.Reset()
	if c.Current() != Neutral {
		t.Errorf("expected NEUTRAL after reset, got %v", c.Current())
	}
}

func TestBoundaries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		b       Boundaries
		wantErr bool
	}{
		{"valid", defaultBounds(), false},
		{"left above right", Boundaries{Left: 0.7, Right: 0.3, Up: 0.3, Down: 0.7}, true},
		{"up above down", Boundaries{Left: 0.3, Right: 0.7, Up: 0.8, Down: 0.2}, true},
		{"out of range", Boundaries{Left: -0.1, Right: 0.7, Up: 0.3, Down: 0.7}, true},
		{"above one", Boundaries{Left: 0.3, Right: 1.2, Up: 0.3, Down: 0.7}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.b.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewClassifier_RejectsBadHysteresis(t *testing.T) {
	if _, err := NewClassifier(defaultBounds(), -0.01); err == nil {
		t.Error("expected error for negative hysteresis")
	}
	// Margin so large the neutral region disappears.
	if _, err := NewClassifier(defaultBounds(), 0.2); err == nil {
		t.Error("expected error for hysteresis swallowing the neutral region")
	}
}

func TestParseRoundTrip(t *testing.T) {
	zones := []Zone{Neutral, Up, Down, Left, Right, UpLeft, UpRight, DownLeft, DownRight}
	for _, z := range zones {
		got, err := Parse(z.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", z.String(), err)
		}
		if got != z {
			t.Errorf("Parse(%q) = %v, want %v", z.String(), got, z)
		}
	}
	if _, err := Parse("SIDEWAYS"); err == nil {
		t.Error("expected error for unknown zone name")
	}
}
