package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/sightline/go-sightline/pkg/hub"
)

// PatternInfo is the dashboard view of one sequence pattern.
type PatternInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Command     string   `json:"command"`
	Steps       []string `json:"steps"`
}

// handleStatus returns the current engine snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.engine.Snapshot())
}

// handleCommands returns the recorded command log, newest last.
func (s *Server) handleCommands(c *fiber.Ctx) error {
	return c.JSON(s.recorder.Entries())
}

// handlePatterns returns the active sequence pattern table.
func (s *Server) handlePatterns(c *fiber.Ctx) error {
	patterns := s.engine.Patterns()
	out := make([]PatternInfo, len(patterns))
	for i, p := range patterns {
		steps := make([]string, len(p.Steps))
		for j, z := range p.Steps {
			steps[j] = z.String()
		}
		out[i] = PatternInfo{
			Name:        p.Name,
			Description: p.Description,
			Command:     string(p.Command),
			Steps:       steps,
		}
	}
	return c.JSON(out)
}

// ControlsRequest toggles runtime controls; absent fields are left
// unchanged.
type ControlsRequest struct {
	Live   *bool `json:"live"`
	Paused *bool `json:"paused"`
}

// handleControls applies control toggles and returns the result.
func (s *Server) handleControls(c *fiber.Ctx) error {
	var req ControlsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid controls payload",
		})
	}
	if req.Live != nil {
		s.engine.SetLive(*req.Live)
	}
	if req.Paused != nil {
		s.engine.SetPaused(*req.Paused)
	}
	controls := s.engine.Controls()
	return c.JSON(fiber.Map{
		"live":   controls.Live,
		"paused": controls.Paused,
	})
}

// handleStateWS attaches a client to the live state stream.
func (s *Server) handleStateWS(c *websocket.Conn) {
	hub.NewClient(s.stateHub, c).Run()
}

// handleCommandWS attaches a client to the live command stream.
func (s *Server) handleCommandWS(c *websocket.Conn) {
	hub.NewClient(s.commandHub, c).Run()
}
