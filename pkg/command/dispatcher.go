package command

import (
	"sync"

	"github.com/sightline/go-sightline/internal/log"
)

// dispatch is one queued backend call.
type dispatch struct {
	event Event
	live  bool
}

// Dispatcher decouples the frame-synchronous engine from the backend.
// Dispatch never blocks: events are queued and delivered by a single
// worker goroutine, so a slow or failing backend cannot stall frame
// processing. When the queue is full the event is dropped and counted;
// the engine never retries, since a retried device action could duplicate
// a physical command.
type Dispatcher struct {
	backend Backend
	queue   chan dispatch

	mu      sync.Mutex
	dropped uint64
	done    chan struct{}
	started bool
}

// NewDispatcher creates a dispatcher with the given queue size.
func NewDispatcher(backend Backend, size int) *Dispatcher {
	if size <= 0 {
		size = 16
	}
	return &Dispatcher{
		backend: backend,
		queue:   make(chan dispatch, size),
		done:    make(chan struct{}),
	}
}

// Start launches the delivery worker. Safe to call once.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	go func() {
		defer close(d.done)
		for item := range d.queue {
			var err error
			if item.live {
				err = d.backend.Execute(item.event)
			} else {
				err = d.backend.Simulate(item.event)
			}
			if err != nil {
				// Surfaced, never retried.
				log.Error("backend dispatch failed",
					"kind", string(item.event.Kind),
					"live", item.live,
					"error", err)
			}
		}
	}()
}

// Dispatch queues an event for delivery. live selects Execute over
// Simulate. Returns false if the queue was full and the event dropped.
func (d *Dispatcher) Dispatch(e Event, live bool) bool {
	select {
	case d.queue <- dispatch{event: e, live: live}:
		return true
	default:
		d.mu.Lock()
		d.dropped++
		n := d.dropped
		d.mu.Unlock()
		log.Warn("dispatch queue full, dropping command",
			"kind", string(e.Kind), "dropped_total", n)
		return false
	}
}

// Dropped returns how many events were dropped due to backpressure.
func (d *Dispatcher) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Close stops accepting events and waits for queued deliveries to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	close(d.queue)
	if started {
		<-d.done
	}
}
