package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PushoverConfig holds credentials for the Pushover notification sink.
// When empty, class-start notices are only logged.
type PushoverConfig struct {
	Token string `yaml:"token" json:"token"`
	User  string `yaml:"user" json:"user"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the bridge API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// WidgetConfig controls the pre-rendered weekly grid.
type WidgetConfig struct {
	// WidthPx / HeightPx are the bitmap dimensions in pixels.
	WidthPx  int `yaml:"width_px" json:"width_px"`
	HeightPx int `yaml:"height_px" json:"height_px"`

	// Density scales dp-specified grid metrics (header height, time column
	// width, insets) into pixels, mirroring the device pixel density of the
	// host launcher. 1.0 means 1dp == 1px.
	Density float64 `yaml:"density" json:"density"`

	// Theme is "light" or "dark".
	Theme string `yaml:"theme" json:"theme"`

	// FontPath optionally points to a TTF/OTF with Hangul coverage. When
	// empty the bundled Go fonts are used; Korean titles then render as
	// missing-glyph boxes, so real deployments should set this.
	FontPath string `yaml:"font_path,omitempty" json:"font_path,omitempty"`
}

// Config is the top-level daemon configuration.
type Config struct {
	// Listen is the HTTP listen address for the bridge API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used for "today", trigger instants and
	// the midnight rollover (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// DataDir holds schedule.json, settings.json and widget.png.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// RefreshCron re-renders widget.png periodically so launchers that poll
	// the file never see a stale grid. Cron-style, e.g. "*/15 * * * *".
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ExactAlarms allows precise wake alarms. When false the scheduler
	// falls back to minute-granularity (inexact) firing, mirroring the OS
	// denying the exact-alarm privilege.
	ExactAlarms bool `yaml:"exact_alarms" json:"exact_alarms"`

	Widget WidgetConfig `yaml:"widget" json:"widget"`

	// Pushover, if configured, delivers class-start notices out of process.
	Pushover PushoverConfig `yaml:"pushover,omitempty" json:"pushover,omitempty"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	// Log level/format, passed to the zap-backed logger.
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8091",
		Timezone:    "Asia/Seoul",
		DataDir:     "./var",
		RefreshCron: "*/15 * * * *",
		ExactAlarms: true,
		Widget: WidgetConfig{
			WidthPx:  1080,
			HeightPx: 1080,
			Density:  3.0,
			Theme:    "dark",
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8091"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	if c.DataDir == "" {
		c.DataDir = "./var"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.Widget.WidthPx <= 0 {
		c.Widget.WidthPx = 1080
	}
	if c.Widget.HeightPx <= 0 {
		c.Widget.HeightPx = 1080
	}
	if c.Widget.Density <= 0 {
		c.Widget.Density = 3.0
	}
	switch c.Widget.Theme {
	case "light", "dark":
		// ok
	default:
		c.Widget.Theme = "dark"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".knwidget-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
