package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !reflect.DeepEqual(cfg.TargetTags, []string{"Code", "Description"}) {
		t.Errorf("TargetTags = %v", cfg.TargetTags)
	}
	if cfg.Output.Dir != "." {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}
	if cfg.Output.Suffix != "_cleaned" {
		t.Errorf("Output.Suffix = %q", cfg.Output.Suffix)
	}
	if cfg.Archive.Prefix != "gerflor_cleaned" {
		t.Errorf("Archive.Prefix = %q", cfg.Archive.Prefix)
	}
	if cfg.Watch.DebounceMS != 500 {
		t.Errorf("Watch.DebounceMS = %d", cfg.Watch.DebounceMS)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("Load without file = %+v, want defaults", cfg)
	}
}

func TestLoad_FromXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "xmlclean")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
target_tags = ["Code", "Description", "Remark"]

[output]
suffix = "_scrubbed"

[watch]
debounce_ms = 100
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.TargetTags, []string{"Code", "Description", "Remark"}) {
		t.Errorf("TargetTags = %v", cfg.TargetTags)
	}
	if cfg.Output.Suffix != "_scrubbed" {
		t.Errorf("Output.Suffix = %q", cfg.Output.Suffix)
	}
	if got := cfg.Watch.Debounce(); got != 100*time.Millisecond {
		t.Errorf("Debounce = %v", got)
	}
	// Unset sections keep their defaults
	if cfg.Archive.Prefix != "gerflor_cleaned" {
		t.Errorf("Archive.Prefix = %q", cfg.Archive.Prefix)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte(`target_tags = ["Secret"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.TargetTags, []string{"Secret"}) {
		t.Errorf("TargetTags = %v", cfg.TargetTags)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Load of missing explicit path succeeded, want error")
	}
}

func TestLoad_EmptyTargetTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte(`target_tags = []`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load with empty target_tags succeeded, want error")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := expandHome("~/out"); got != filepath.Join(home, "out") {
		t.Errorf("expandHome(~/out) = %q", got)
	}
	if got := expandHome("/abs/out"); got != "/abs/out" {
		t.Errorf("expandHome(/abs/out) = %q", got)
	}
}
