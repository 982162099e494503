package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if cfg.Server.Listen != ":6000" {
		t.Errorf("expected default listen :6000, got %q", cfg.Server.Listen)
	}
	if cfg.Client.ConnectRetries != 3 {
		t.Errorf("expected 3 connect retries, got %d", cfg.Client.ConnectRetries)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aldea.yaml")
	doc := `
server:
  listen: ":7100"
plots:
  - {x: 0, y: 0, kind: house}
  - {x: 2, y: 0, kind: market}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != ":7100" {
		t.Errorf("listen not overridden: %q", cfg.Server.Listen)
	}
	if cfg.Server.HeartbeatWindowS != 30 {
		t.Errorf("heartbeat window should default to 30, got %d", cfg.Server.HeartbeatWindowS)
	}
	if len(cfg.Plots) != 2 || cfg.Plots[1].Kind != "market" {
		t.Errorf("plots not parsed: %+v", cfg.Plots)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [this is not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
