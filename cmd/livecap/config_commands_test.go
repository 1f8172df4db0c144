package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runConfigInit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := runConfigInit(t, "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output should mention target path: %q", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, want := range []string{"[paths]", "[transcriber]", "[media]", "chunk_seconds"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("sample config missing %q", want)
		}
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	if _, err := runConfigInit(t, "--path", target); err == nil {
		t.Fatal("init over an existing file should fail without --overwrite")
	}

	if _, err := runConfigInit(t, "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.Contains(string(data), "# existing") {
		t.Error("overwrite left the old file in place")
	}
}
