package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/airkeys/internal/app"
	"github.com/ayusman/airkeys/internal/capture"
	"github.com/ayusman/airkeys/internal/detector"
	"github.com/ayusman/airkeys/internal/keyboard"
	"github.com/ayusman/airkeys/internal/server"
	"github.com/ayusman/airkeys/internal/store"
	"github.com/ayusman/airkeys/internal/typing"
)

const (
	width  = 1920
	height = 1080
)

func pinch(t *testing.T, label string) []detector.HandLandmarks {
	t.Helper()

	var center *keyboard.Rect
	keyboard.NewLayout().Keys(func(k keyboard.Key, r keyboard.Rect) {
		if center == nil && k.Label == label {
			r := r
			center = &r
		}
	})
	if center == nil {
		t.Fatalf("no key %q", label)
	}
	x := (float64(center.X+center.W/2) + 0.5) / width
	y := (float64(center.Y+center.H/2) + 0.5) / height
	return []detector.HandLandmarks{detector.PinchLandmarks(x, y)}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestE2E_TypeThroughViewer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	frames := capture.NewBlankFrames(1, width, height)
	defer frames[0].Close()

	// H, a pause longer than the debounce window, I, then no hands.
	seq := [][]detector.HandLandmarks{pinch(t, "H")}
	for i := 0; i < typing.ClickDelay+2; i++ {
		seq = append(seq, nil)
	}
	seq = append(seq, pinch(t, "I"), nil)

	det := detector.NewMockDetector()
	det.SetSequence(seq)

	events := server.NewEventHub(nil)
	application := app.New(app.Config{
		Camera:   capture.NewMockCamera(frames, true),
		Detector: det,
		FPS:      100,
		Mirror:   true,
		Store:    s,
		Frames:   server.NewFrameHub(0),
		Events:   events,
	})

	srv := server.New(server.Config{
		Store:      s,
		Events:     events,
		Controller: application,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/events", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	readEvent := func() server.Event {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var ev server.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		return ev
	}

	if snap := readEvent(); snap.Type != server.EventState || !snap.Enabled || snap.Text != "" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	waitFor(t, "websocket registration", func() bool { return events.Clients() == 1 })

	done := make(chan error, 1)
	go func() { done <- application.Run(context.Background()) }()

	t.Run("KeyEvents", func(t *testing.T) {
		for _, want := range []string{"H", "HI"} {
			ev := readEvent()
			if ev.Type != server.EventKey || ev.Text != want {
				t.Fatalf("event = %+v, want key event with text %q", ev, want)
			}
		}
	})

	t.Run("Text", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/text")
		if err != nil {
			t.Fatalf("GET /api/text error = %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if body.Text != "HI" {
			t.Errorf("text = %q, want HI", body.Text)
		}
	})

	t.Run("Stop", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/control", "application/json", strings.NewReader(`{"action":"stop"}`))
		if err != nil {
			t.Fatalf("POST /api/control error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Run() did not return after stop")
		}
	})

	t.Run("History", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/sessions")
		if err != nil {
			t.Fatalf("GET /api/sessions error = %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			Sessions []struct {
				ID     string `json:"id"`
				Text   string `json:"text"`
				Keys   int    `json:"keys"`
				Active bool   `json:"active"`
			} `json:"sessions"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if len(body.Sessions) != 1 {
			t.Fatalf("sessions = %d, want 1", len(body.Sessions))
		}
		got := body.Sessions[0]
		if got.Text != "HI" || got.Keys != 2 || got.Active {
			t.Errorf("session = %+v, want ended with 2 keys and text HI", got)
		}
	})
}

func TestE2E_HealthWithoutApp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	srv := server.New(server.Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}
