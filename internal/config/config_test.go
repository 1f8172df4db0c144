package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"livecap/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantScratch := filepath.Join(tempHome, ".local", "share", "livecap", "scratch")
	if cfg.Paths.ScratchDir != wantScratch {
		t.Fatalf("unexpected scratch dir: got %q want %q", cfg.Paths.ScratchDir, wantScratch)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7823" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Transcriber.Engine != "whispercpp" {
		t.Fatalf("unexpected engine: %q", cfg.Transcriber.Engine)
	}
	if cfg.Transcriber.Language != "auto" {
		t.Fatalf("expected auto language default, got %q", cfg.Transcriber.Language)
	}
	if cfg.Media.ChunkSeconds != 10 {
		t.Fatalf("expected 10 second chunks, got %d", cfg.Media.ChunkSeconds)
	}
	if cfg.Media.RestartEveryCues != 3 {
		t.Fatalf("expected restart cadence 3, got %d", cfg.Media.RestartEveryCues)
	}
	if cfg.Media.Sink != config.SinkTSPipe {
		t.Fatalf("unexpected default sink: %q", cfg.Media.Sink)
	}
}

func TestLoadParsesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "livecap.toml")
	content := `
[paths]
scratch_dir = "` + filepath.Join(dir, "scratch") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[transcriber]
model = "small"
language = "IT"

[media]
chunk_seconds = 5
sink = "hls"
restart_every_cues = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit file to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Transcriber.Model != "small" {
		t.Fatalf("unexpected model: %q", cfg.Transcriber.Model)
	}
	if cfg.Transcriber.Language != "it" {
		t.Fatalf("expected lowercased language, got %q", cfg.Transcriber.Language)
	}
	if cfg.Media.ChunkSeconds != 5 {
		t.Fatalf("unexpected chunk seconds: %d", cfg.Media.ChunkSeconds)
	}
	if cfg.Media.Sink != config.SinkHLS {
		t.Fatalf("unexpected sink: %q", cfg.Media.Sink)
	}
	if cfg.Media.RestartEveryCues != 0 {
		t.Fatalf("expected restarts disabled, got %d", cfg.Media.RestartEveryCues)
	}
}

func TestLoadRejectsUnknownSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "livecap.toml")
	if err := os.WriteFile(path, []byte("[media]\nsink = \"carrier_pigeon\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "media.sink") {
		t.Fatalf("expected sink validation error, got %v", err)
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "livecap.toml")
	if err := os.WriteFile(path, []byte("[transcriber]\nengine = \"parrot\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "transcriber.engine") {
		t.Fatalf("expected engine validation error, got %v", err)
	}
}

func TestSampleConfigParsesToDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "livecap.toml")
	if err := os.WriteFile(path, []byte(config.SampleConfig()), 0o644); err != nil {
		t.Fatal(err)
	}

	fromSample, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	fromDefaults, _, _, err := config.Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("default config failed to load: %v", err)
	}
	if *fromSample != *fromDefaults {
		t.Fatalf("sample config diverges from defaults:\nsample:   %+v\ndefaults: %+v", fromSample, fromDefaults)
	}
}
