package sequence

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sightline/go-sightline/pkg/command"
	"github.com/sightline/go-sightline/pkg/zone"
)

//go:embed data/*.json
var embeddedPatterns embed.FS

// patternData is the raw JSON structure of a pattern file.
type patternData struct {
	// Description is a human-readable description of the gesture.
	Description string `json:"description"`

	// Command is the command kind the pattern triggers.
	Command string `json:"command"`

	// Steps are the zone names in order, e.g. ["LEFT","RIGHT","LEFT"].
	Steps []string `json:"steps"`
}

// LoadEmbedded loads a built-in pattern by name.
func LoadEmbedded(name string) (Pattern, error) {
	filename := fmt.Sprintf("data/%s.json", name)
	data, err := embeddedPatterns.ReadFile(filename)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %q not found: %w", name, err)
	}
	return parsePatternJSON(name, data)
}

// ListEmbedded returns the names of all built-in patterns.
func ListEmbedded() ([]string, error) {
	entries, err := embeddedPatterns.ReadDir("data")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// LoadBuiltIn loads every embedded pattern, in name order.
func LoadBuiltIn() ([]Pattern, error) {
	names, err := ListEmbedded()
	if err != nil {
		return nil, fmt.Errorf("failed to list built-in patterns: %w", err)
	}
	var patterns []Pattern
	for _, name := range names {
		p, err := LoadEmbedded(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load pattern %q: %w", name, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// LoadFromFile loads a pattern from a JSON file on disk. This allows
// users to add custom gesture packs.
func LoadFromFile(path string) (Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pattern{}, fmt.Errorf("failed to read pattern file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	return parsePatternJSON(name, data)
}

// LoadFromDirectory loads all patterns from a directory.
func LoadFromDirectory(dir string) ([]Pattern, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list pattern files: %w", err)
	}
	sort.Strings(files)

	var patterns []Pattern
	for _, file := range files {
		p, err := LoadFromFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func parsePatternJSON(name string, data []byte) (Pattern, error) {
	var raw patternData
	if err := json.Unmarshal(data, &raw); err != nil {
		return Pattern{}, fmt.Errorf("pattern %q: invalid JSON: %w", name, err)
	}

	steps := make([]zone.Zone, 0, len(raw.Steps))
	for i, s := range raw.Steps {
		z, err := zone.Parse(s)
		if err != nil {
			return Pattern{}, fmt.Errorf("pattern %q step %d: %w", name, i, err)
		}
		steps = append(steps, z)
	}

	p := Pattern{
		Name:        name,
		Description: raw.Description,
		Command:     command.Kind(raw.Command),
		Steps:       steps,
	}
	if err := p.Validate(); err != nil {
		return Pattern{}, err
	}
	return p, nil
}
