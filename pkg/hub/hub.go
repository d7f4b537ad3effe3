// Package hub provides a channel-based websocket broadcast hub used to
// fan engine state and command streams out to dashboard clients.
//
// All traffic is JSON. The hub encodes once per broadcast and never
// blocks the caller: a full broadcast queue or a slow client drops
// messages, not frames.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/sightline/go-sightline/internal/log"
)

// Envelope is the wire frame sent to clients: a stream type tag and the
// encoded payload.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts to them.
type Hub struct {
	name string

	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// New creates a hub. name tags log lines, e.g. "state" or "commands".
func New(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop; call it in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("hub client connected", "hub", h.name, "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("hub client disconnected", "hub", h.name, "clients", count)

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow client: drop it rather than stall the hub.
					close(client.send)
					delete(h.clients, client)
					log.Warn("hub dropped slow client", "hub", h.name)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop shuts the hub down and disconnects all clients.
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast encodes the payload under the given stream type and queues
// it for every client. Returns the encoding error, if any; a full queue
// drops the message silently.
func (h *Hub) Broadcast(streamType string, payload any) error {
	data, err := json.Marshal(Envelope{Type: streamType, Payload: payload})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	default:
		log.Warn("hub broadcast queue full, dropping message", "hub", h.name)
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
