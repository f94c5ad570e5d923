package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("first-run load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8091" || cfg.Timezone != "Asia/Seoul" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Widget.WidthPx != 1080 || cfg.Widget.Density != 3.0 || cfg.Widget.Theme != "dark" {
		t.Errorf("widget defaults = %+v", cfg.Widget)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perms = %o, want 600", perm)
	}

	// Second load reads the file it just wrote.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *again != *cfg {
		t.Errorf("reload mismatch: %+v vs %+v", again, cfg)
	}
}

func TestLoad_PartialFileNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := []byte("listen: 0.0.0.0:9000\nwidget:\n  theme: sepia\n")
	if err := os.WriteFile(path, partial, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Errorf("listen = %q, explicit value lost", cfg.Listen)
	}
	if cfg.Timezone != "Asia/Seoul" || cfg.DataDir != "./var" {
		t.Errorf("missing fields not defaulted: %+v", cfg)
	}
	if cfg.Widget.Theme != "dark" {
		t.Errorf("unknown theme %q not normalized to dark", cfg.Widget.Theme)
	}
	if cfg.Widget.Density != 3.0 {
		t.Errorf("density = %v, want default 3.0", cfg.Widget.Density)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:9999"
	cfg.Pushover = PushoverConfig{Token: "tok", User: "usr"}
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Listen != "127.0.0.1:9999" {
		t.Errorf("listen = %q", got.Listen)
	}
	if got.Pushover != cfg.Pushover {
		t.Errorf("pushover = %+v", got.Pushover)
	}
	if got.BasicAuth == nil || *got.BasicAuth != *cfg.BasicAuth {
		t.Errorf("basic auth = %+v", got.BasicAuth)
	}
}

func TestSave_NilConfig(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "c.yaml"), nil); err == nil {
		t.Error("expected error for nil config")
	}
}
