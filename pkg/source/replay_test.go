package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeReplay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.ndjson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReplay_ReadsFramesInOrder(t *testing.T) {
	path := writeReplay(t, `{"timestamp": 100.0, "detected": true, "x": 0.5, "y": 0.5, "ear": 0.3, "valid": true}
{"timestamp": 100.033, "detected": true, "x": 0.52, "y": 0.5, "ear": 0.3, "valid": true}

{"timestamp": 100.066, "detected": true, "x": 0.54, "y": 0.5, "ear": 0.1, "valid": false}
`)
	r, err := OpenReplay(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	ctx := context.Background()

	s1, err := r.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s1.X != 0.5 || !s1.Valid {
		t.Errorf("first sample = %+v", s1)
	}

	s2, err := r.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !s2.Timestamp.After(s1.Timestamp) {
		t.Error("timestamps not increasing")
	}

	// The blank line is skipped; the invalid-landmark frame still
	// arrives, flagged.
	s3, err := r.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s3.Valid {
		t.Error("expected invalid sample")
	}

	if _, err := r.Next(ctx); err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestReplay_NoDetectionFrame(t *testing.T) {
	path := writeReplay(t, `{"timestamp": 100.0, "detected": false}
{"timestamp": 100.033, "detected": true, "x": 0.5, "y": 0.5, "ear": 0.3, "valid": true}
`)
	r, err := OpenReplay(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	ctx := context.Background()

	if _, err := r.Next(ctx); !errors.Is(err, ErrNoDetection) {
		t.Fatalf("expected ErrNoDetection, got %v", err)
	}
	// The stream continues after the signal.
	if _, err := r.Next(ctx); err != nil {
		t.Fatalf("expected a sample after no-detection, got %v", err)
	}
}

func TestReplay_BadLine(t *testing.T) {
	path := writeReplay(t, "{not json}\n")
	r, err := OpenReplay(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.Next(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}

func TestReplay_OutOfRangeFrame(t *testing.T) {
	path := writeReplay(t, `{"timestamp": 100.0, "detected": true, "x": 1.5, "y": 0.5, "ear": 0.3, "valid": true}
`)
	r, err := OpenReplay(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.Next(context.Background()); err == nil {
		t.Error("expected validation error for out-of-range position")
	}
}

func TestReplay_ContextCancelled(t *testing.T) {
	path := writeReplay(t, `{"timestamp": 100.0, "detected": true, "x": 0.5, "y": 0.5, "ear": 0.3, "valid": true}
`)
	r, err := OpenReplay(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context error, got %v", err)
	}
}

func TestOpenReplay_Missing(t *testing.T) {
	if _, err := OpenReplay("/nonexistent/session.ndjson"); err == nil {
		t.Error("expected error for missing file")
	}
}
