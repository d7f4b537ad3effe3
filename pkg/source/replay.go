package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sightline/go-sightline/pkg/gaze"
)

// Replay reads recorded detector frames from an NDJSON file, one frame
// per line. It yields frames as fast as the caller pulls them; pacing
// against the recorded timestamps is the caller's concern.
type Replay struct {
	f       *os.File
	scanner *bufio.Scanner
	line    int
}

var _ Source = (*Replay)(nil)

// OpenReplay opens a recorded sample log.
func OpenReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening replay: %w", err)
	}
	return &Replay{f: f, scanner: bufio.NewScanner(f)}, nil
}

// Next returns the next recorded frame. Blank lines are skipped;
// detected=false frames map to ErrNoDetection; end of file is io.EOF.
func (r *Replay) Next(ctx context.Context) (gaze.Sample, error) {
	if err := ctx.Err(); err != nil {
		return gaze.Sample{}, err
	}

	for r.scanner.Scan() {
		r.line++
		data := r.scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			return gaze.Sample{}, fmt.Errorf("replay line %d: %w", r.line, err)
		}
		if !frame.Detected {
			return gaze.Sample{}, ErrNoDetection
		}
		s, err := frame.Sample()
		if err != nil {
			return gaze.Sample{}, fmt.Errorf("replay line %d: %w", r.line, err)
		}
		return s, nil
	}
	if err := r.scanner.Err(); err != nil {
		return gaze.Sample{}, err
	}
	return gaze.Sample{}, io.EOF
}

// Close closes the underlying file.
func (r *Replay) Close() error {
	return r.f.Close()
}
