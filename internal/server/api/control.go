package api

import (
	"encoding/json"
	"net/http"
)

// Control actions accepted by POST /api/control.
const (
	ActionStop   = "stop"
	ActionPause  = "pause"
	ActionResume = "resume"
)

// Controller is the part of the running keyboard the viewer can drive.
type Controller interface {
	Text() string
	CursorVisible() bool
	Enabled() bool
	SetEnabled(enabled bool)
	Stop()
}

// ControlHandler serves /api/control and /api/text.
type ControlHandler struct {
	ctrl Controller
}

// NewControlHandler creates a ControlHandler for ctrl.
func NewControlHandler(ctrl Controller) *ControlHandler {
	return &ControlHandler{ctrl: ctrl}
}

type controlRequest struct {
	Action string `json:"action"`
}

type controlResponse struct {
	Enabled bool `json:"enabled"`
	Stopped bool `json:"stopped,omitempty"`
}

type textResponse struct {
	Text          string `json:"text"`
	CursorVisible bool   `json:"cursor_visible"`
}

// ServeControl handles GET and POST /api/control.
func (h *ControlHandler) ServeControl(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, controlResponse{Enabled: h.ctrl.Enabled()})
	case http.MethodPost:
		var req controlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		resp := controlResponse{}
		switch req.Action {
		case ActionStop:
			h.ctrl.Stop()
			resp.Stopped = true
		case ActionPause:
			h.ctrl.SetEnabled(false)
		case ActionResume:
			h.ctrl.SetEnabled(true)
		default:
			writeError(w, http.StatusBadRequest, "action must be stop, pause or resume")
			return
		}

		resp.Enabled = h.ctrl.Enabled()
		writeJSON(w, http.StatusOK, resp)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ServeText handles GET /api/text.
func (h *ControlHandler) ServeText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, textResponse{
		Text:          h.ctrl.Text(),
		CursorVisible: h.ctrl.CursorVisible(),
	})
}
