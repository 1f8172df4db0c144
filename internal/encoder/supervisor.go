package encoder

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"livecap/internal/logging"
	"livecap/internal/media"
	"livecap/internal/process"
	"livecap/internal/services"
)

// Config carries everything needed to build and relaunch the encoder
// command line.
type Config struct {
	FFmpegBinary string
	Source       string
	SubtitlePath string
	Style        string
	Sink         media.Sink

	// RestartEveryCues is the restart cadence. Zero disables restarts;
	// continuous sinks never restart regardless.
	RestartEveryCues int
	TerminateGrace   time.Duration
	VerifyWindow     time.Duration
}

type startFunc func(name string, args []string, opts ...process.Option) (*process.Handle, error)

// Supervisor keeps at most one encoder process alive and replaces it on
// the configured cue cadence so the new process re-reads the subtitle
// file.
type Supervisor struct {
	cfg    Config
	logger *slog.Logger
	start  startFunc

	mu              sync.Mutex
	handle          *process.Handle
	restarts        int
	lastRestartCues int
	stopped         bool
}

// Option adjusts a Supervisor.
type Option func(*Supervisor)

// WithStartFunc substitutes the process launcher.
func WithStartFunc(start startFunc) Option {
	return func(s *Supervisor) {
		if start != nil {
			s.start = start
		}
	}
}

// NewSupervisor builds an idle supervisor. Launch starts the first
// encoder process.
func NewSupervisor(cfg Config, logger *slog.Logger, opts ...Option) *Supervisor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	s := &Supervisor{
		cfg:    cfg,
		logger: logging.WithComponent(logger, "encoder"),
		start:  process.Start,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Launch starts the encoder and verifies it survives the startup window.
// An exit inside the window is reported as a crash carrying the last
// stderr lines; the supervisor never retries on its own.
func (s *Supervisor) Launch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launchLocked()
}

func (s *Supervisor) launchLocked() error {
	if s.stopped {
		return nil
	}
	if s.handle != nil && s.handle.IsAlive() {
		return nil
	}

	args := media.EncoderArgs(s.cfg.Source, s.cfg.SubtitlePath, s.cfg.Style, s.cfg.Sink)
	handle, err := s.start(s.cfg.FFmpegBinary, args, process.WithStderrTail(4096))
	if err != nil {
		return services.Wrap(services.ErrSpawn, "encoder", "launch",
			"Failed to start encoder "+s.cfg.FFmpegBinary, err)
	}

	if err := verifyStartup(handle, s.cfg.VerifyWindow); err != nil {
		return err
	}

	s.handle = handle
	s.logger.Info("encoder started",
		logging.Int("pid", handle.PID()),
		logging.String("sink", s.cfg.Sink.Kind),
	)
	return nil
}

// verifyStartup waits out the verification window and classifies an early
// exit as a crash with diagnostics.
func verifyStartup(handle *process.Handle, window time.Duration) error {
	if window <= 0 {
		return nil
	}
	exited := make(chan error, 1)
	go func() { exited <- handle.Wait() }()

	timer := time.NewTimer(window)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case waitErr := <-exited:
		detail := strings.TrimSpace(handle.StderrTail())
		msg := fmt.Sprintf("Encoder exited with code %d during startup", handle.ExitCode())
		if detail != "" {
			msg += ": " + lastLines(detail, 5)
		}
		return services.Wrap(services.ErrEncoderCrashed, "encoder", "verify startup", msg, waitErr)
	}
}

// MaybeRestart terminates and relaunches the encoder once the cue count
// has advanced a full cadence past the last restart. Continuous sinks and
// a zero cadence disable restarts.
func (s *Supervisor) MaybeRestart(cueCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A stop request wins over the cadence. The worker may still be
	// finishing a chunk when Stop runs; bringing a fresh process up
	// here would leave it with no owner.
	if s.stopped || s.cfg.RestartEveryCues <= 0 || s.cfg.Sink.Continuous() {
		return nil
	}
	if cueCount-s.lastRestartCues < s.cfg.RestartEveryCues {
		return nil
	}

	if s.handle != nil {
		outcome := s.handle.Terminate(s.cfg.TerminateGrace)
		s.logger.Debug("encoder stopped for restart",
			logging.String("outcome", string(outcome)),
			logging.Int("cue_count", cueCount),
		)
		s.handle = nil
	}

	if err := s.launchLocked(); err != nil {
		return err
	}
	s.restarts++
	s.lastRestartCues = cueCount
	return nil
}

// Alive reports whether an encoder process is currently running.
func (s *Supervisor) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil && s.handle.IsAlive()
}

// Restarts reports how many restarts have completed.
func (s *Supervisor) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}

// CrashDiagnostics returns the dead encoder's exit code and trailing
// stderr. Empty when no process has been launched or it is still alive.
func (s *Supervisor) CrashDiagnostics() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil || s.handle.IsAlive() {
		return 0, ""
	}
	return s.handle.ExitCode(), lastLines(strings.TrimSpace(s.handle.StderrTail()), 10)
}

// Stop terminates the current encoder process and pins the supervisor
// shut: no later Launch or MaybeRestart brings another one up. Safe to
// call repeatedly.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.handle == nil {
		return
	}
	outcome := s.handle.Terminate(s.cfg.TerminateGrace)
	s.logger.Debug("encoder stopped", logging.String("outcome", string(outcome)))
	s.handle = nil
}

func lastLines(text string, n int) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
