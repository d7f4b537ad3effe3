// Package config provides configuration helpers for go-sightline
// commands: environment lookups and YAML tuning profiles layered over
// the built-in engine presets.
package config

import (
	"fmt"
	"os"

	"github.com/sightline/go-sightline/pkg/engine"
)

// Default daemon configuration.
const (
	DefaultListenAddr = ":8080"
	DefaultFeedURL    = "ws://127.0.0.1:9000/gaze"
)

// ListenAddr returns the dashboard listen address from SIGHTLINE_ADDR.
// Falls back to the default if not set.
func ListenAddr() string {
	if addr := os.Getenv("SIGHTLINE_ADDR"); addr != "" {
		return addr
	}
	return DefaultListenAddr
}

// FeedURL returns the gaze detector websocket URL from SIGHTLINE_FEED.
// Falls back to the provided default if not set.
func FeedURL(defaultURL string) string {
	if url := os.Getenv("SIGHTLINE_FEED"); url != "" {
		return url
	}
	return defaultURL
}

// ProfilePath returns the tuning profile path from SIGHTLINE_PROFILE,
// or empty if none is configured.
func ProfilePath() string {
	return os.Getenv("SIGHTLINE_PROFILE")
}

// PresetName returns the preset name from SIGHTLINE_PRESET or the
// provided default.
func PresetName(defaultName string) string {
	if name := os.Getenv("SIGHTLINE_PRESET"); name != "" {
		return name
	}
	return defaultName
}

// Preset returns the named built-in engine preset.
func Preset(name string) (engine.Config, error) {
	switch name {
	case "", "default":
		return engine.DefaultConfig(), nil
	case "responsive":
		return engine.ResponsiveConfig(), nil
	case "powersaver":
		return engine.PowerSaverConfig(), nil
	}
	return engine.Config{}, fmt.Errorf("unknown preset %q (want default, responsive or powersaver)", name)
}

// Load resolves the engine configuration: the named preset, overlaid
// with the YAML profile at path if one is given. A preset named in the
// profile wins over the preset argument.
func Load(preset, path string) (engine.Config, error) {
	if path == "" {
		return Preset(preset)
	}
	profile, err := LoadProfile(path)
	if err != nil {
		return engine.Config{}, err
	}
	if profile.Preset != "" {
		preset = profile.Preset
	}
	cfg, err := Preset(preset)
	if err != nil {
		return engine.Config{}, err
	}
	return profile.Apply(cfg)
}
