package source

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sightline/go-sightline/internal/log"
	"github.com/sightline/go-sightline/pkg/gaze"
)

const (
	dialTimeout  = 10 * time.Second
	feedReadWait = 30 * time.Second
)

// Feed reads detector frames from a websocket. The detector is the
// producer; the feed never writes application data.
type Feed struct {
	url  string
	conn *websocket.Conn
}

var _ Source = (*Feed)(nil)

// DialFeed connects to the detector websocket endpoint.
func DialFeed(url string) (*Feed, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to gaze feed %s: %w", url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(feedReadWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	log.Info("gaze feed connected", "url", url)
	return &Feed{url: url, conn: conn}, nil
}

// Next reads one frame. A frame with detected=false maps to
// ErrNoDetection; a closed connection maps to io.EOF.
func (f *Feed) Next(ctx context.Context) (gaze.Sample, error) {
	if err := ctx.Err(); err != nil {
		return gaze.Sample{}, err
	}

	deadline := time.Now().Add(feedReadWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	f.conn.SetReadDeadline(deadline)

	var frame Frame
	if err := f.conn.ReadJSON(&frame); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return gaze.Sample{}, io.EOF
		}
		return gaze.Sample{}, fmt.Errorf("reading gaze feed: %w", err)
	}

	if !frame.Detected {
		return gaze.Sample{}, ErrNoDetection
	}
	return frame.Sample()
}

// Close closes the underlying connection.
func (f *Feed) Close() error {
	f.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return f.conn.Close()
}
