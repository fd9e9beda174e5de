package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if got != Default() {
		t.Fatalf("Load(\"\") = %+v, want defaults", got)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[sequencer]
bind_addr = "127.0.0.1:9100"
ring_depth = 128

[log]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Sequencer.BindAddr != "127.0.0.1:9100" {
		t.Fatalf("BindAddr = %q, want 127.0.0.1:9100", got.Sequencer.BindAddr)
	}
	if got.Sequencer.RingDepth != 128 {
		t.Fatalf("RingDepth = %d, want 128", got.Sequencer.RingDepth)
	}
	if got.Log.Level != "DEBUG" {
		t.Fatalf("Log.Level = %q, want DEBUG", got.Log.Level)
	}
	// Unspecified fields keep their defaults.
	if got.Metrics.Addr != Default().Metrics.Addr {
		t.Fatalf("Metrics.Addr = %q, want default %q", got.Metrics.Addr, Default().Metrics.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.toml"); err == nil {
		t.Fatal("Load() on a missing file should fail")
	}
}
