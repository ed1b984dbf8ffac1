// Command keyboard is an airkeys plugin that types key presses into the
// focused macOS application through System Events.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request is read from stdin.
type Request struct {
	Action string          `json:"action"`
	Key    string          `json:"key"`
	Text   string          `json:"text"`
	Params json.RawMessage `json:"params"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeystrokeParams carries the key label and optional modifiers.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// keyCodes are virtual key codes for labels that are not typed as text.
var keyCodes = map[string]int{
	"BackSpace": 51,
	"Tab":       48,
	"CapsLock":  57,
	"Return":    36,
}

// textKeys are labels typed as a literal string.
var textKeys = map[string]string{
	"Space": " ",
}

// ignoredKeys have no effect on their own.
var ignoredKeys = map[string]bool{
	"Shift": true,
}

var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	switch req.Action {
	case "keystroke", "shortcut":
		script, err := scriptFor(req)
		if err != nil {
			writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
			return
		}
		if script != "" {
			if err := runAppleScript(script); err != nil {
				writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
				return
			}
		}
	default:
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	writeResponse(Response{Success: true})
}

// scriptFor builds the AppleScript for a request. An empty script means the
// key is accepted but does nothing.
func scriptFor(req Request) (string, error) {
	var p KeystrokeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return "", fmt.Errorf("failed to parse params: %w", err)
		}
	}
	if p.Key == "" {
		p.Key = req.Key
	}
	if p.Key == "" {
		return "", fmt.Errorf("key is required")
	}

	return buildKeystrokeScript(p.Key, p.Modifiers), nil
}

// buildKeystrokeScript generates an AppleScript for a key label and modifiers.
func buildKeystrokeScript(label string, modifiers []string) string {
	if ignoredKeys[label] {
		return ""
	}

	var command string
	if code, ok := keyCodes[label]; ok {
		command = fmt.Sprintf("key code %d", code)
	} else {
		text, ok := textKeys[label]
		if !ok {
			text = label
		}
		command = fmt.Sprintf(`keystroke "%s"`, escape(text))
	}

	var appleModifiers []string
	for _, mod := range modifiers {
		if m, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, m)
		}
	}

	script := `tell application "System Events" to ` + command
	if len(appleModifiers) > 0 {
		script += " using {" + strings.Join(appleModifiers, ", ") + "}"
	}
	return script
}

// escape quotes a string for an AppleScript string literal.
func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
