package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"livecap/internal/config"
	"livecap/internal/language"
	"livecap/internal/logging"
	"livecap/internal/services"
)

// commandRunner executes an external recognizer invocation and returns its
// standard output. Swapped out in tests.
type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

// WhisperCPP shells out to the whisper.cpp CLI once per chunk.
type WhisperCPP struct {
	binary    string
	modelPath string
	lang      string
	logger    *slog.Logger
	run       commandRunner
}

// Option adjusts a WhisperCPP engine.
type Option func(*WhisperCPP)

// WithCommandRunner substitutes the process launcher.
func WithCommandRunner(run commandRunner) Option {
	return func(w *WhisperCPP) {
		if run != nil {
			w.run = run
		}
	}
}

// NewWhisperCPP resolves the configured model to a file on disk and returns
// a ready engine. Model resolution failures surface as spawn errors since
// no transcription can ever succeed without a model.
func NewWhisperCPP(cfg config.Transcriber, logger *slog.Logger, opts ...Option) (*WhisperCPP, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	modelPath, err := ResolveModel(cfg.Model, cfg.ModelDir)
	if err != nil {
		return nil, err
	}
	w := &WhisperCPP{
		binary:    strings.TrimSpace(cfg.Binary),
		modelPath: modelPath,
		lang:      normalizeLanguage(cfg.Language),
		logger:    logging.WithComponent(logger, "transcriber"),
	}
	if w.binary == "" {
		w.binary = "whisper-cli"
	}
	w.run = w.defaultRunner
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// ModelPath reports the resolved model file.
func (w *WhisperCPP) ModelPath() string { return w.modelPath }

// Transcribe recognizes one chunk and returns the trimmed transcript.
// Recognizer failures are wrapped as transcription errors so callers can
// drop the chunk and keep the session alive.
func (w *WhisperCPP) Transcribe(ctx context.Context, audioPath string) (string, error) {
	start := time.Now()
	out, err := w.run(ctx, w.binary, w.buildArgs(audioPath)...)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcriber", "recognize chunk",
			"Recognizer failed on "+audioPath, err)
	}
	text := collapseTranscript(out)
	w.logger.Debug("chunk transcribed",
		logging.String("audio_path", audioPath),
		logging.Int("text_len", len(text)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

func (w *WhisperCPP) buildArgs(audioPath string) []string {
	return []string{
		"-m", w.modelPath,
		"-f", audioPath,
		"-l", w.lang,
		"-nt",
		"-np",
	}
}

func (w *WhisperCPP) defaultRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, lastLines(detail, 5))
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stdout.String(), nil
}

// collapseTranscript flattens recognizer output into a single trimmed line.
// whisper.cpp emits one line per internal segment.
func collapseTranscript(raw string) string {
	lines := strings.Split(raw, "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

func lastLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func normalizeLanguage(value string) string {
	if language.IsAuto(value) {
		return language.Auto
	}
	if iso := language.ToISO2(value); iso != "" {
		return iso
	}
	return language.Auto
}
