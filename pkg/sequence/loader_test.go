package sequence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sightline/go-sightline/pkg/command"
	"github.com/sightline/go-sightline/pkg/zone"
)

func TestLoadBuiltIn(t *testing.T) {
	patterns, err := LoadBuiltIn()
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) < 3 {
		t.Fatalf("expected at least 3 built-in patterns, got %d", len(patterns))
	}

	byName := make(map[string]Pattern)
	for _, p := range patterns {
		byName[p.Name] = p
	}

	nurse, ok := byName["call_nurse"]
	if !ok {
		t.Fatal("missing built-in call_nurse pattern")
	}
	if nurse.Command != command.KindCallNurse {
		t.Errorf("call_nurse command = %v", nurse.Command)
	}
	want := []zone.Zone{zone.Left, zone.Right, zone.Left}
	if len(nurse.Steps) != len(want) {
		t.Fatalf("call_nurse has %d steps, want %d", len(nurse.Steps), len(want))
	}
	for i, z := range want {
		if nurse.Steps[i] != z {
			t.Errorf("call_nurse step %d = %v, want %v", i, nurse.Steps[i], z)
		}
	}
}

func TestLoadEmbedded_Unknown(t *testing.T) {
	if _, err := LoadEmbedded("no_such_pattern"); err == nil {
		t.Error("expected error for unknown pattern name")
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()

	good := `{"description": "test", "command": "PAGE_FAMILY", "steps": ["DOWN", "DOWN", "UP"]}`
	if err := os.WriteFile(filepath.Join(dir, "page_family.json"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}

	patterns, err := LoadFromDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	if patterns[0].Name != "page_family" || patterns[0].Command != "PAGE_FAMILY" {
		t.Errorf("loaded %+v", patterns[0])
	}
}

func TestLoadFromDirectory_RejectsBadPattern(t *testing.T) {
	cases := map[string]string{
		"bad_zone.json":    `{"command": "X", "steps": ["SIDEWAYS"]}`,
		"neutral.json":     `{"command": "X", "steps": ["NEUTRAL"]}`,
		"no_command.json":  `{"steps": ["LEFT"]}`,
		"not_json.json":    `{steps: [`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFromDirectory(dir); err == nil {
				t.Error("expected load error")
			}
		})
	}
}
