// Package config declares the command-line and file configuration of airkeys
// and where configuration files are looked up.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// AppDirName is the per-user data directory under the home directory.
const AppDirName = ".airkeys"

// EnvConfig names the environment variable holding an explicit config path.
const EnvConfig = "AIRKEYS_CONFIG"

// Capture configures the camera.
type Capture struct {
	Device    int     `help:"Camera device index." default:"0" env:"AIRKEYS_CAMERA"`
	Width     int     `help:"Capture width in pixels." default:"1920"`
	Height    int     `help:"Capture height in pixels." default:"1080"`
	FPS       int     `help:"Target frames per second." default:"30"`
	Mirror    bool    `help:"Mirror frames horizontally before detection." default:"true" negatable:""`
	Motion    float64 `help:"Percentage of changed pixels that triggers landmark detection; 0 detects on every frame." default:"0"`
	MediaPipe string  `help:"Path to mediapipe_service.py." type:"path"`
}

// Typing tunes gesture interpretation.
type Typing struct {
	ClickThreshold float64 `help:"Fingertip distance in pixels that counts as a pinch." default:"40"`
	ClickDelay     int     `help:"Frames to wait between two key presses." default:"10"`
	BlinkDelay     int     `help:"Frames per cursor blink phase." default:"30"`
	Skeleton       bool    `help:"Draw the detected hand skeleton." default:"true" negatable:""`
}

// Output configures where rendered frames and events go.
type Output struct {
	Window bool   `help:"Show frames in a local window; Esc stops." default:"true" negatable:""`
	Serve  string `help:"Address of the browser viewer and API; empty disables it." default:":8080" env:"AIRKEYS_SERVE"`
	Static string `help:"Directory of static viewer files." type:"path"`
	Tray   bool   `help:"Show a system tray icon."`
}

// Storage configures the session history database.
type Storage struct {
	DB string `help:"SQLite database path; empty disables history." env:"AIRKEYS_DB"`
}

// Plugins configures key forwarding.
type Plugins struct {
	Dir     string        `help:"Plugin directory." type:"path" env:"AIRKEYS_PLUGIN_DIR"`
	Forward string        `help:"Name of a plugin that receives every key press."`
	Timeout time.Duration `help:"Plugin execution timeout." default:"5s"`
}

// Log configures logging.
type Log struct {
	Level string `help:"Log level (trace, debug, info, warn, error)." default:"info" enum:"trace,debug,info,warn,error" env:"AIRKEYS_LOG_LEVEL"`
	File  string `help:"Also write logs to this file." type:"path"`
}

// Settings are the options shared by all commands.
type Settings struct {
	Config  string  `help:"Configuration file (json, yaml or toml)." type:"path" env:"AIRKEYS_CONFIG"`
	Capture Capture `embed:"" prefix:"capture." group:"Capture"`
	Typing  Typing  `embed:"" prefix:"typing." group:"Typing"`
	Output  Output  `embed:"" prefix:"output." group:"Output"`
	Storage Storage `embed:"" prefix:"storage." group:"Storage"`
	Plugins Plugins `embed:"" prefix:"plugins." group:"Plugins"`
	Log     Log     `embed:"" prefix:"log." group:"Logging"`
}

// ApplyDefaults fills in paths that depend on the user's home directory.
func (s *Settings) ApplyDefaults() {
	dir, err := DefaultDir()
	if err != nil {
		return
	}
	if s.Storage.DB == "" {
		s.Storage.DB = filepath.Join(dir, "airkeys.db")
	}
	if s.Plugins.Dir == "" {
		s.Plugins.Dir = filepath.Join(dir, "plugins")
	}
}

// DefaultDir returns ~/.airkeys.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, AppDirName), nil
}

// UserConfigPath extracts an explicit --config value from raw arguments,
// falling back to AIRKEYS_CONFIG.
func UserConfigPath(args []string) string {
	for i, a := range args {
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv(EnvConfig)
}

// CandidatePaths lists configuration files to try, per format, in priority
// order. An explicit path is routed to the loader matching its extension.
func CandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	addAll := func(dir, base string) {
		jsonPaths = append(jsonPaths, filepath.Join(dir, base+".json"))
		yamlPaths = append(yamlPaths, filepath.Join(dir, base+".yaml"), filepath.Join(dir, base+".yml"))
		tomlPaths = append(tomlPaths, filepath.Join(dir, base+".toml"))
	}

	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, userPath)
		case ".toml":
			tomlPaths = append(tomlPaths, userPath)
		default:
			jsonPaths = append(jsonPaths, userPath)
		}
	}

	if wd, err := os.Getwd(); err == nil {
		addAll(wd, "airkeys")
	}
	if dir, err := DefaultDir(); err == nil {
		addAll(dir, "config")
	}
	if runtime.GOOS != "windows" {
		addAll("/etc/airkeys", "config")
	}
	return
}
