// Package web provides the real-time monitoring dashboard: REST
// endpoints for engine state, the command log and the pattern table,
// and websocket streams for live state and command updates. Rendering
// is left to whatever frontend connects; this is a data surface only.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/sightline/go-sightline/internal/log"
	"github.com/sightline/go-sightline/pkg/command"
	"github.com/sightline/go-sightline/pkg/engine"
	"github.com/sightline/go-sightline/pkg/hub"
)

// Server is the dashboard server.
type Server struct {
	app  *fiber.App
	addr string

	engine   *engine.Engine
	recorder *command.Recorder

	stateHub   *hub.Hub
	commandHub *hub.Hub
}

// NewServer creates a dashboard server over the given engine and
// command recorder.
func NewServer(addr string, eng *engine.Engine, recorder *command.Recorder) *Server {
	s := &Server{
		addr:       addr,
		engine:     eng,
		recorder:   recorder,
		stateHub:   hub.New("state"),
		commandHub: hub.New("commands"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Sightline Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development frontends.
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/commands", s.handleCommands)
	api.Get("/patterns", s.handlePatterns)
	api.Post("/controls", s.handleControls)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/commands", websocket.New(s.handleCommandWS))

	s.app = app
	return s
}

// Start runs the hubs and serves until Shutdown.
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", s.addr)
	go s.stateHub.Run()
	go s.commandHub.Run()
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server stopped", "error", err)
		}
	}()
}

// PublishState broadcasts an engine snapshot to state stream clients.
func (s *Server) PublishState(snap engine.Snapshot) {
	if err := s.stateHub.Broadcast("state", snap); err != nil {
		log.Warn("state broadcast failed", "error", err)
	}
}

// PublishCommand broadcasts an emitted command to command stream clients.
func (s *Server) PublishCommand(ev command.Event) {
	if err := s.commandHub.Broadcast("command", ev); err != nil {
		log.Warn("command broadcast failed", "error", err)
	}
}

// Shutdown stops the server and disconnects all stream clients.
func (s *Server) Shutdown() error {
	s.stateHub.Stop()
	s.commandHub.Stop()
	return s.app.Shutdown()
}
