package testsupport

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"livecap/internal/config"
	"livecap/internal/encoder"
	"livecap/internal/process"
	"livecap/internal/session"
	"livecap/internal/transcribe"
)

// CannedTranscriber returns the same transcript for every chunk.
type CannedTranscriber struct {
	Text string
}

func (c CannedTranscriber) Transcribe(context.Context, string) (string, error) {
	return c.Text, nil
}

// SleepProcess launches a long-lived stand-in for the segmenter or encoder.
func SleepProcess(_ string, _ []string, opts ...process.Option) (*process.Handle, error) {
	return process.Start("/bin/sh", []string{"-c", "sleep 30"}, opts...)
}

// TranscriberFactory substitutes the given recognizer for the real one.
func TranscriberFactory(trans transcribe.Transcriber) session.Option {
	return session.WithTranscriberFactory(
		func(config.Transcriber, *slog.Logger) (transcribe.Transcriber, error) {
			return trans, nil
		})
}

// SessionOptions replaces every external process a session would spawn with
// harmless stand-ins so lifecycle tests run without ffmpeg or whisper.
func SessionOptions(trans transcribe.Transcriber) []session.Option {
	return []session.Option{
		TranscriberFactory(trans),
		session.WithSegmenterStart(SleepProcess),
		session.WithEncoderOptions(encoder.WithStartFunc(SleepProcess)),
	}
}

// WaitFor polls cond until it holds or the deadline expires.
func WaitFor(t testing.TB, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
