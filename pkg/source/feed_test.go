package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// feedServer serves a canned list of frames over one websocket
// connection, then closes cleanly.
func feedServer(t *testing.T, frames []Frame) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		// Wait for the client's close response.
		conn.SetReadDeadline(time.Now().Add(time.Second))
		conn.ReadMessage()
	}))
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestFeed_ReadsFramesThenEOF(t *testing.T) {
	ts := feedServer(t, []Frame{
		{Timestamp: 100.0, Detected: true, X: 0.4, Y: 0.6, EAR: 0.3, Valid: true},
		{Timestamp: 100.033, Detected: false},
		{Timestamp: 100.066, Detected: true, X: 0.4, Y: 0.6, EAR: 0.3, Valid: true},
	})
	defer ts.Close()

	feed, err := DialFeed(wsURL(ts))
	if err != nil {
		t.Fatal(err)
	}
	defer feed.Close()
	ctx := context.Background()

	s, err := feed.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.X != 0.4 || s.Y != 0.6 || !s.Valid {
		t.Errorf("sample = %+v", s)
	}

	if _, err := feed.Next(ctx); !errors.Is(err, ErrNoDetection) {
		t.Fatalf("expected ErrNoDetection, got %v", err)
	}

	if _, err := feed.Next(ctx); err != nil {
		t.Fatalf("expected sample after no-detection, got %v", err)
	}

	if _, err := feed.Next(ctx); err != io.EOF {
		t.Errorf("expected EOF after server close, got %v", err)
	}
}

func TestFeed_ContextCancelled(t *testing.T) {
	ts := feedServer(t, nil)
	defer ts.Close()

	feed, err := DialFeed(wsURL(ts))
	if err != nil {
		t.Fatal(err)
	}
	defer feed.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := feed.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context error, got %v", err)
	}
}

func TestDialFeed_Unreachable(t *testing.T) {
	if _, err := DialFeed("ws://127.0.0.1:1/gaze"); err == nil {
		t.Error("expected dial error")
	}
}
