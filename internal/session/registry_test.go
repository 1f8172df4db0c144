package session_test

import (
	"errors"
	"testing"

	"livecap/internal/services"
	"livecap/internal/session"
	"livecap/internal/testsupport"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := session.NewRegistry()
	cfg := testsupport.NewConfig(t)

	first := session.New(cfg, session.Request{Source: "a.mp4"}, nil)
	second := session.New(cfg, session.Request{Source: "b.mp4"}, nil)
	reg.Add(first)
	reg.Add(second)

	got, err := reg.Get(first.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID() != first.ID() {
		t.Errorf("Get returned session %s, want %s", got.ID(), first.ID())
	}

	if len(reg.List()) != 2 {
		t.Fatalf("List returned %d sessions, want 2", len(reg.List()))
	}

	reg.Remove(first.ID())
	if _, err := reg.Get(first.ID()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error %v should match ErrNotFound", err)
	}
	if len(reg.List()) != 1 {
		t.Errorf("List returned %d sessions after remove, want 1", len(reg.List()))
	}
}
