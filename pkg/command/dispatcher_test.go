package command

import (
	"testing"
	"time"
)

func TestDispatcher_DeliversByMode(t *testing.T) {
	backend := NewMockBackend()
	d := NewDispatcher(backend, 8)
	d.Start()

	now := time.Now()
	d.Dispatch(NewEvent(KindClick, 1.0, SourceBlink, now), false)
	d.Dispatch(NewEvent(KindLeft, 0.7, SourceDirection, now), true)
	d.Close()

	if got := backend.SimulatedCount(); got != 1 {
		t.Errorf("expected 1 simulated call, got %d", got)
	}
	if got := backend.ExecutedCount(); got != 1 {
		t.Errorf("expected 1 executed call, got %d", got)
	}
	if backend.Executed[0].Kind != KindLeft {
		t.Errorf("executed wrong kind: %v", backend.Executed[0].Kind)
	}
}

func TestDispatcher_NeverBlocksOnSlowBackend(t *testing.T) {
	backend := NewMockBackend()
	backend.Block = make(chan struct{})
	d := NewDispatcher(backend, 2)
	d.Start()

	now := time.Now()
	// Fill the worker (blocked on first event) plus the queue, then more.
	// None of these calls may block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Dispatch(NewEvent(KindClick, 1.0, SourceBlink, now), false)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a slow backend")
	}

	if d.Dropped() == 0 {
		t.Error("expected drops once the queue filled")
	}

	// Release the backend and drain.
	close(backend.Block)
	backend.Block = nil
	d.Close()
}

func TestRecorder_KeepsBoundedLog(t *testing.T) {
	r := NewRecorder(3)
	now := time.Now()
	for i := 0; i < 5; i++ {
		if err := r.Simulate(NewEvent(KindClick, 1.0, SourceBlink, now)); err != nil {
			t.Fatal(err)
		}
	}
	if r.Len() != 3 {
		t.Errorf("expected log bounded at 3 entries, got %d", r.Len())
	}
	for _, e := range r.Entries() {
		if e.Mode != "simulate" {
			t.Errorf("expected simulate mode, got %q", e.Mode)
		}
	}
}
