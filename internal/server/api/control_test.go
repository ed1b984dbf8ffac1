package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeController struct {
	text    string
	visible bool
	enabled bool
	stopped bool
}

func (c *fakeController) Text() string            { return c.text }
func (c *fakeController) CursorVisible() bool     { return c.visible }
func (c *fakeController) Enabled() bool           { return c.enabled }
func (c *fakeController) SetEnabled(enabled bool) { c.enabled = enabled }
func (c *fakeController) Stop()                   { c.stopped = true }

func postControl(t *testing.T, h *ControlHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/control", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeControl(rec, req)
	return rec
}

func TestControlHandler_Actions(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		startOn     bool
		wantStatus  int
		wantEnabled bool
		wantStopped bool
	}{
		{name: "pause", body: `{"action":"pause"}`, startOn: true, wantStatus: http.StatusOK, wantEnabled: false},
		{name: "resume", body: `{"action":"resume"}`, startOn: false, wantStatus: http.StatusOK, wantEnabled: true},
		{name: "stop", body: `{"action":"stop"}`, startOn: true, wantStatus: http.StatusOK, wantEnabled: true, wantStopped: true},
		{name: "unknown action", body: `{"action":"explode"}`, startOn: true, wantStatus: http.StatusBadRequest, wantEnabled: true},
		{name: "invalid json", body: `{`, startOn: true, wantStatus: http.StatusBadRequest, wantEnabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{enabled: tt.startOn}
			rec := postControl(t, NewControlHandler(ctrl), tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if ctrl.enabled != tt.wantEnabled {
				t.Errorf("enabled = %v, want %v", ctrl.enabled, tt.wantEnabled)
			}
			if ctrl.stopped != tt.wantStopped {
				t.Errorf("stopped = %v, want %v", ctrl.stopped, tt.wantStopped)
			}

			if tt.wantStatus == http.StatusOK {
				var resp controlResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Enabled != tt.wantEnabled || resp.Stopped != tt.wantStopped {
					t.Errorf("response = %+v", resp)
				}
			}
		})
	}
}

func TestControlHandler_Status(t *testing.T) {
	h := NewControlHandler(&fakeController{enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/api/control", nil)
	rec := httptest.NewRecorder()
	h.ServeControl(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var resp controlResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Enabled {
		t.Error("expected enabled=true")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/control", nil)
	rec = httptest.NewRecorder()
	h.ServeControl(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestControlHandler_Text(t *testing.T) {
	h := NewControlHandler(&fakeController{text: "HELLO", visible: true})

	req := httptest.NewRequest(http.MethodGet, "/api/text", nil)
	rec := httptest.NewRecorder()
	h.ServeText(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var resp textResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Text != "HELLO" || !resp.CursorVisible {
		t.Errorf("response = %+v", resp)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/text", nil)
	rec = httptest.NewRecorder()
	h.ServeText(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
