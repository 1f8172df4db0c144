package process

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// TerminationOutcome reports how a process left the process table.
type TerminationOutcome string

const (
	TerminatedGracefully    TerminationOutcome = "graceful"
	TerminatedForced        TerminationOutcome = "forced"
	TerminatedAlreadyExited TerminationOutcome = "already_exited"
)

// Handle supervises one running external process.
type Handle struct {
	name string
	cmd  *exec.Cmd

	done    chan struct{}
	waitErr error

	mu      sync.Mutex
	closers []io.Closer

	stderr *tailBuffer
}

// Option adjusts how a process is started.
type Option func(*startConfig)

type startConfig struct {
	stdout        io.Writer
	captureStderr bool
	stderrLimit   int
}

// WithStdout routes the child's stdout to w. By default stdout is
// discarded.
func WithStdout(w io.Writer) Option {
	return func(c *startConfig) { c.stdout = w }
}

// WithStderrTail keeps the last limit bytes of stderr for diagnostics.
func WithStderrTail(limit int) Option {
	return func(c *startConfig) {
		c.captureStderr = true
		if limit > 0 {
			c.stderrLimit = limit
		}
	}
}

// Start launches name with args in its own process group.
func Start(name string, args []string, opts ...Option) (*Handle, error) {
	cfg := startConfig{stderrLimit: 4096}
	for _, opt := range opts {
		opt(&cfg)
	}

	cmd := exec.Command(name, args...) //nolint:gosec
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	h := &Handle{name: name, cmd: cmd, done: make(chan struct{})}

	if cfg.stdout != nil {
		cmd.Stdout = cfg.stdout
	}
	if cfg.captureStderr {
		h.stderr = newTailBuffer(cfg.stderrLimit)
		cmd.Stderr = h.stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	go func() {
		h.waitErr = cmd.Wait()
		close(h.done)
	}()

	return h, nil
}

// Name returns the executable name the handle was started with.
func (h *Handle) Name() string { return h.name }

// PID returns the child's process id.
func (h *Handle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// AddCloser registers a pipe endpoint owned by the handle, closed before
// signaling during Terminate.
func (h *Handle) AddCloser(c io.Closer) {
	if c == nil {
		return
	}
	h.mu.Lock()
	h.closers = append(h.closers, c)
	h.mu.Unlock()
}

// IsAlive reports whether the process is still running. Non-blocking,
// never returns an error.
func (h *Handle) IsAlive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the process exits and returns its wait error.
func (h *Handle) Wait() error {
	<-h.done
	return h.waitErr
}

// ExitCode returns the exit code after the process has exited, or -1 while
// it is still running.
func (h *Handle) ExitCode() int {
	select {
	case <-h.done:
	default:
		return -1
	}
	if state := h.cmd.ProcessState; state != nil {
		return state.ExitCode()
	}
	return -1
}

// StderrTail returns the captured tail of stderr, or "" when capture was
// not requested.
func (h *Handle) StderrTail() string {
	if h.stderr == nil {
		return ""
	}
	return h.stderr.String()
}

// Terminate closes owned pipes, sends SIGTERM to the process group, waits
// up to grace, and escalates to SIGKILL with an unbounded reap wait. All
// OS errors during teardown are treated as best effort.
func (h *Handle) Terminate(grace time.Duration) TerminationOutcome {
	h.closeOwnedPipes()

	select {
	case <-h.done:
		return TerminatedAlreadyExited
	default:
	}

	h.signalGroup(unix.SIGTERM)

	select {
	case <-h.done:
		return TerminatedGracefully
	case <-time.After(grace):
	}

	h.signalGroup(unix.SIGKILL)
	<-h.done
	return TerminatedForced
}

func (h *Handle) closeOwnedPipes() {
	h.mu.Lock()
	closers := h.closers
	h.closers = nil
	h.mu.Unlock()
	for _, c := range closers {
		_ = c.Close()
	}
}

func (h *Handle) signalGroup(sig unix.Signal) {
	pid := h.PID()
	if pid <= 0 {
		return
	}
	// Negative pid addresses the whole group created by Setpgid, so
	// children spawned by the tool die with it.
	if err := unix.Kill(-pid, sig); err != nil {
		_ = unix.Kill(pid, sig)
	}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
