package main

import (
	"path/filepath"
	"testing"

	"livecap/internal/config"
)

func TestBuildSocketPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	expected := filepath.Join(cfg.Paths.LogDir, "livecapd.sock")
	if got := buildSocketPath(&cfg); got != expected {
		t.Fatalf("expected socket path %q, got %q", expected, got)
	}
}
