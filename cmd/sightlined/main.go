// Sightline daemon: connects to the external gaze detector, runs the
// command recognition engine and serves the monitoring dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sightline/go-sightline/internal/config"
	"github.com/sightline/go-sightline/internal/log"
	"github.com/sightline/go-sightline/pkg/command"
	"github.com/sightline/go-sightline/pkg/engine"
	"github.com/sightline/go-sightline/pkg/source"
	"github.com/sightline/go-sightline/pkg/web"
)

func main() {
	var (
		debug   = flag.Bool("debug", false, "Enable verbose debug logging")
		preset  = flag.String("preset", config.PresetName("default"), "Engine preset: default, responsive, powersaver")
		profile = flag.String("profile", config.ProfilePath(), "YAML tuning profile (overlays the preset)")
		feedURL = flag.String("feed", config.FeedURL(config.DefaultFeedURL), "Gaze detector websocket URL")
		addr    = flag.String("addr", config.ListenAddr(), "Dashboard listen address")
		live    = flag.Bool("live", false, "Execute commands instead of simulating them")
	)
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	cfg, err := config.Load(*preset, *profile)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	eng, err := engine.New(cfg)
	if err != nil {
		log.Error("engine construction failed", "error", err)
		os.Exit(1)
	}
	eng.SetLive(*live)

	recorder := command.NewRecorder(500)
	dispatcher := command.NewDispatcher(recorder, 64)
	dispatcher.Start()
	defer dispatcher.Close()

	server := web.NewServer(*addr, eng, recorder)
	server.StartAsync()
	defer server.Shutdown()

	feed, err := source.DialFeed(*feedURL)
	if err != nil {
		log.Error("gaze feed unavailable", "error", err)
		os.Exit(1)
	}
	defer feed.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Unblock a pending feed read when the context is cancelled.
	go func() {
		<-ctx.Done()
		feed.Close()
	}()

	if err := run(ctx, eng, feed, dispatcher, server); err != nil {
		log.Error("runtime error", "error", err)
		os.Exit(1)
	}
	log.Info("shutting down")
}

// run pumps samples from the source through the engine until the
// context is cancelled or the stream ends.
func run(ctx context.Context, eng *engine.Engine, src source.Source,
	dispatcher *command.Dispatcher, server *web.Server) error {
	for {
		sample, err := src.Next(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		case err == io.EOF:
			return nil
		case errors.Is(err, source.ErrNoDetection):
			eng.ResetTimers()
			server.PublishState(eng.Snapshot())
			continue
		case err != nil:
			if ctx.Err() != nil {
				// Read failed because shutdown closed the feed.
				return nil
			}
			return err
		}

		ev, emitted := eng.Tick(sample)
		if emitted {
			dispatcher.Dispatch(ev, eng.Controls().Live)
			server.PublishCommand(ev)
		}
		server.PublishState(eng.Snapshot())
	}
}
