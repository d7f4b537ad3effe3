// Replay runs a recorded NDJSON gaze session through the engine and
// prints every emitted command with its offset into the recording.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sightline/go-sightline/internal/config"
	"github.com/sightline/go-sightline/internal/log"
	"github.com/sightline/go-sightline/pkg/engine"
	"github.com/sightline/go-sightline/pkg/source"
)

func main() {
	var (
		debug   = flag.Bool("debug", false, "Enable verbose debug logging")
		preset  = flag.String("preset", "default", "Engine preset: default, responsive, powersaver")
		profile = flag.String("profile", "", "YAML tuning profile (overlays the preset)")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: replay [flags] <session.ndjson>")
		os.Exit(2)
	}

	level := "warn"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	cfg, err := config.Load(*preset, *profile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	eng, err := engine.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engine error:", err)
		os.Exit(1)
	}

	replay, err := source.OpenReplay(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer replay.Close()

	if err := run(eng, replay); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(eng *engine.Engine, replay *source.Replay) error {
	ctx := context.Background()
	var (
		start    time.Time
		frames   int
		resets   int
		commands int
	)

	for {
		sample, err := replay.Next(ctx)
		switch {
		case err == io.EOF:
			snap := eng.Snapshot()
			fmt.Printf("\n%d frames, %d detection gaps, %d commands, avg tick %v\n",
				frames, resets, commands, snap.AvgTickTime)
			return nil
		case errors.Is(err, source.ErrNoDetection):
			eng.ResetTimers()
			resets++
			continue
		case err != nil:
			return err
		}

		frames++
		if start.IsZero() {
			start = sample.Timestamp
		}

		if ev, ok := eng.Tick(sample); ok {
			commands++
			fmt.Printf("%8s  %-16s source=%s confidence=%.2f\n",
				sample.Timestamp.Sub(start).Round(time.Millisecond),
				ev.Kind, ev.Source, ev.Confidence)
		}
	}
}
