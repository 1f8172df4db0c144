package encoder_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"livecap/internal/config"
	"livecap/internal/encoder"
	"livecap/internal/media"
	"livecap/internal/process"
	"livecap/internal/services"
)

// shellStart ignores the built command line and runs a shell script
// instead, while recording the arguments the supervisor produced.
func shellStart(script string, captured *[]string) func(string, []string, ...process.Option) (*process.Handle, error) {
	return func(_ string, args []string, opts ...process.Option) (*process.Handle, error) {
		if captured != nil {
			*captured = append([]string(nil), args...)
		}
		return process.Start("/bin/sh", []string{"-c", script}, opts...)
	}
}

func testConfig() encoder.Config {
	return encoder.Config{
		FFmpegBinary: "ffmpeg",
		Source:       "input.mp4",
		SubtitlePath: "/tmp/session.srt",
		Style:        "FontSize=24",
		Sink:         media.Sink{Kind: config.SinkTSFile, Path: "/tmp/out.ts"},

		RestartEveryCues: 3,
		TerminateGrace:   time.Second,
		VerifyWindow:     150 * time.Millisecond,
	}
}

func TestLaunchVerifiesStartup(t *testing.T) {
	var args []string
	sup := encoder.NewSupervisor(testConfig(), nil,
		encoder.WithStartFunc(shellStart("sleep 30", &args)))
	defer sup.Stop()

	if err := sup.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if !sup.Alive() {
		t.Fatal("encoder should be alive after verified launch")
	}

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "subtitles=") {
		t.Errorf("encoder args %q missing burn-in filter", joined)
	}
	if !strings.Contains(joined, "libx264") {
		t.Errorf("encoder args %q missing video codec", joined)
	}

	sup.Stop()
	if sup.Alive() {
		t.Error("encoder should be dead after Stop")
	}
}

func TestLaunchReportsEarlyExitWithDiagnostics(t *testing.T) {
	sup := encoder.NewSupervisor(testConfig(), nil,
		encoder.WithStartFunc(shellStart("echo 'no such filter: subtitles' >&2; exit 3", nil)))

	err := sup.Launch()
	if err == nil {
		t.Fatal("expected crash error for early exit")
	}
	if !errors.Is(err, services.ErrEncoderCrashed) {
		t.Errorf("error %v should match ErrEncoderCrashed", err)
	}
	if !services.Fatal(err) {
		t.Error("encoder crash must be fatal")
	}
	if !strings.Contains(err.Error(), "no such filter") {
		t.Errorf("error %v should carry captured stderr", err)
	}
}

func TestMaybeRestartFollowsCueCadence(t *testing.T) {
	cfg := testConfig()
	cfg.VerifyWindow = 50 * time.Millisecond
	sup := encoder.NewSupervisor(cfg, nil,
		encoder.WithStartFunc(shellStart("sleep 30", nil)))
	defer sup.Stop()

	if err := sup.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	for cues := 1; cues <= 2; cues++ {
		if err := sup.MaybeRestart(cues); err != nil {
			t.Fatalf("MaybeRestart(%d): %v", cues, err)
		}
	}
	if got := sup.Restarts(); got != 0 {
		t.Fatalf("restarts before cadence = %d, want 0", got)
	}

	if err := sup.MaybeRestart(3); err != nil {
		t.Fatalf("MaybeRestart(3): %v", err)
	}
	if got := sup.Restarts(); got != 1 {
		t.Fatalf("restarts at cadence = %d, want 1", got)
	}
	if !sup.Alive() {
		t.Fatal("replacement encoder should be alive")
	}

	// The cadence counts from the last restart, not from zero.
	for cues := 4; cues <= 5; cues++ {
		if err := sup.MaybeRestart(cues); err != nil {
			t.Fatalf("MaybeRestart(%d): %v", cues, err)
		}
	}
	if got := sup.Restarts(); got != 1 {
		t.Fatalf("restarts mid-cadence = %d, want 1", got)
	}
	if err := sup.MaybeRestart(6); err != nil {
		t.Fatalf("MaybeRestart(6): %v", err)
	}
	if got := sup.Restarts(); got != 2 {
		t.Fatalf("restarts after second cadence = %d, want 2", got)
	}
}

func TestContinuousSinkNeverRestarts(t *testing.T) {
	cfg := testConfig()
	cfg.Sink = media.Sink{Kind: config.SinkHLS, Path: "/tmp/stream/index.m3u8"}
	sup := encoder.NewSupervisor(cfg, nil,
		encoder.WithStartFunc(shellStart("sleep 30", nil)))
	defer sup.Stop()

	if err := sup.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	for cues := 1; cues <= 12; cues++ {
		if err := sup.MaybeRestart(cues); err != nil {
			t.Fatalf("MaybeRestart(%d): %v", cues, err)
		}
	}
	if got := sup.Restarts(); got != 0 {
		t.Errorf("continuous sink restarted %d times, want 0", got)
	}
}

func TestStopBlocksLaterRestart(t *testing.T) {
	cfg := testConfig()
	cfg.RestartEveryCues = 1
	launches := 0
	sup := encoder.NewSupervisor(cfg, nil,
		encoder.WithStartFunc(func(_ string, _ []string, opts ...process.Option) (*process.Handle, error) {
			launches++
			return process.Start("/bin/sh", []string{"-c", "sleep 30"}, opts...)
		}))

	if err := sup.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	sup.Stop()

	// A cue finishing after Stop still hits the cadence; nothing may
	// come back up.
	if err := sup.MaybeRestart(1); err != nil {
		t.Fatalf("MaybeRestart after Stop: %v", err)
	}
	if launches != 1 {
		t.Fatalf("encoder launches = %d, want 1", launches)
	}
	if sup.Alive() {
		t.Error("encoder should stay dead after Stop")
	}
	if err := sup.Launch(); err != nil {
		t.Fatalf("Launch after Stop: %v", err)
	}
	if launches != 1 {
		t.Errorf("Launch after Stop started a process (%d launches)", launches)
	}
}

func TestZeroCadenceDisablesRestarts(t *testing.T) {
	cfg := testConfig()
	cfg.RestartEveryCues = 0
	sup := encoder.NewSupervisor(cfg, nil,
		encoder.WithStartFunc(shellStart("sleep 30", nil)))
	defer sup.Stop()

	if err := sup.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := sup.MaybeRestart(50); err != nil {
		t.Fatalf("MaybeRestart: %v", err)
	}
	if got := sup.Restarts(); got != 0 {
		t.Errorf("restarts = %d, want 0", got)
	}
}

func TestCrashDiagnosticsAfterDeath(t *testing.T) {
	cfg := testConfig()
	cfg.VerifyWindow = 0
	sup := encoder.NewSupervisor(cfg, nil,
		encoder.WithStartFunc(shellStart("echo 'pipe gone' >&2; exit 7", nil)))

	if err := sup.Launch(); err != nil {
		t.Fatalf("Launch with no verify window: %v", err)
	}
	// Give the process time to exit.
	deadline := time.Now().Add(2 * time.Second)
	for sup.Alive() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	code, detail := sup.CrashDiagnostics()
	if code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
	if !strings.Contains(detail, "pipe gone") {
		t.Errorf("diagnostics %q should carry stderr", detail)
	}
}
