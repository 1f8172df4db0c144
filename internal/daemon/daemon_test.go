package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"livecap/internal/api"
	"livecap/internal/config"
	"livecap/internal/daemon"
	"livecap/internal/testsupport"
)

func testConfig(t *testing.T, bind string) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t,
		testsupport.WithAPIBind(bind),
		testsupport.WithFFmpegBinary("no-such-ffmpeg"))
}

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	db := testsupport.MustOpenStore(t, cfg)
	opts := testsupport.SessionOptions(testsupport.CannedTranscriber{Text: "hello"})
	d, err := daemon.New(cfg, db, nil, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { d.Stop() })
	return d
}

func TestStartEnforcesSingleInstance(t *testing.T) {
	cfg := testConfig(t, "")
	first := newDaemon(t, cfg)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}

	second := newDaemon(t, cfg)
	err := second.Start(context.Background())
	if err == nil {
		t.Fatal("second Start should fail while the lock is held")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Errorf("unexpected error: %v", err)
	}

	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("Start after lock release: %v", err)
	}
}

func TestAPIDisabledWhenBindEmpty(t *testing.T) {
	d := newDaemon(t, testConfig(t, ""))
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if addr := d.APIAddr(); addr != "" {
		t.Errorf("APIAddr = %q, want empty with no bind configured", addr)
	}
}

func TestStatusReportsDependencies(t *testing.T) {
	d := newDaemon(t, testConfig(t, ""))
	status := d.Status()

	if status.Running {
		t.Error("daemon should not report running before Start")
	}
	if status.PID == 0 || status.LockFilePath == "" || status.DBPath == "" {
		t.Errorf("incomplete status: %+v", status)
	}
	byName := make(map[string]api.DependencyStatus, len(status.Dependencies))
	for _, dep := range status.Dependencies {
		byName[dep.Name] = dep
	}
	if dep, ok := byName["FFmpeg"]; !ok || dep.Available {
		t.Errorf("FFmpeg should be reported unavailable: %+v", byName)
	}
	if _, ok := byName["whisper.cpp"]; !ok {
		t.Errorf("whisper.cpp missing from dependencies: %+v", byName)
	}
}

func TestHTTPAPILifecycle(t *testing.T) {
	cfg := testConfig(t, "127.0.0.1:0")
	d := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	base := "http://" + d.APIAddr()

	// Daemon status.
	var status api.DaemonStatus
	getJSON(t, base+"/api/status", http.StatusOK, &status)
	if !status.Running || status.SessionCount != 0 {
		t.Fatalf("unexpected daemon status: %+v", status)
	}

	// Create a session.
	var created api.SessionResponse
	postJSON(t, base+"/api/sessions",
		api.CreateSessionRequest{Source: "input.mp4"}, http.StatusCreated, &created)
	if created.Session.Status != "running" {
		t.Fatalf("session status = %s, want running", created.Session.Status)
	}
	id := created.Session.ID

	// Describe and list.
	var described api.SessionResponse
	getJSON(t, base+"/api/sessions/"+id, http.StatusOK, &described)
	if described.Session.ID != id {
		t.Errorf("describe returned %s, want %s", described.Session.ID, id)
	}
	var list api.SessionListResponse
	getJSON(t, base+"/api/sessions", http.StatusOK, &list)
	if len(list.Sessions) != 1 {
		t.Errorf("list returned %d sessions, want 1", len(list.Sessions))
	}

	// Stop, then cleanup.
	postJSON(t, base+"/api/sessions/"+id+"/stop", nil, http.StatusOK, nil)
	getJSON(t, base+"/api/sessions/"+id, http.StatusOK, &described)
	if described.Session.Status != "stopped" {
		t.Errorf("status after stop = %s", described.Session.Status)
	}
	postJSON(t, base+"/api/sessions/"+id+"/cleanup", nil, http.StatusOK, nil)

	// Error paths.
	var apiErr api.ErrorResponse
	getJSON(t, base+"/api/sessions/no-such-id", http.StatusNotFound, &apiErr)
	if apiErr.Error == "" {
		t.Error("missing error message for unknown session")
	}
	postJSON(t, base+"/api/sessions", api.CreateSessionRequest{}, http.StatusBadRequest, &apiErr)

	resp, err := http.Post(base+"/api/status", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/status = %d, want 405", resp.StatusCode)
	}

	// Shutdown through context cancellation.
	cancel()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := http.Get(base + "/api/status"); err != nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("api server still reachable after context cancellation")
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	decodeBody(t, resp, out)
}

func postJSON(t *testing.T, url string, payload any, wantStatus int, out any) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &body)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	decodeBody(t, resp, out)
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if out == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s response: %v", resp.Request.URL, err)
	}
}
