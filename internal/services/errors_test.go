package services_test

import (
	"errors"
	"strings"
	"testing"

	"livecap/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrSpawn, "encoder", "launch", "ffmpeg missing", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrSpawn) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"encoder", "launch", "ffmpeg missing"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToValidation(t *testing.T) {
	err := services.Wrap(nil, "session", "start", "bad request", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestFatalClassification(t *testing.T) {
	if !services.Fatal(services.Wrap(services.ErrSpawn, "session", "start", "", nil)) {
		t.Fatal("spawn errors must be fatal")
	}
	if !services.Fatal(services.Wrap(services.ErrEncoderCrashed, "encoder", "verify", "", nil)) {
		t.Fatal("encoder crashes must be fatal")
	}
	if services.Fatal(services.Wrap(services.ErrTranscription, "transcriber", "chunk", "", nil)) {
		t.Fatal("transcription errors must not be fatal")
	}
	if services.Fatal(services.Wrap(services.ErrCleanup, "session", "cleanup", "", nil)) {
		t.Fatal("cleanup errors must not be fatal")
	}
	if services.Fatal(nil) {
		t.Fatal("nil error must not be fatal")
	}
}
