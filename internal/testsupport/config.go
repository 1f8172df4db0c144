package testsupport

import (
	"path/filepath"
	"testing"

	"livecap/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Timings are tightened so polling tests finish quickly, the startup
// verification window is disabled, and the HTTP API is off unless a bind
// address is requested.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = ""
	cfg.Media.Sink = config.SinkTSFile
	cfg.Media.SubtitleStyle = "FontSize=24"
	cfg.Media.TerminateGraceSeconds = 1
	cfg.Media.VerifyStartupSeconds = 0
	cfg.Media.SettleDelayMillis = 10
	cfg.Media.PollIntervalMillis = 20

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAPIBind enables the HTTP control API on the test config.
func WithAPIBind(addr string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.APIBind = addr
	}
}

// WithFFmpegBinary overrides the ffmpeg executable on the test config.
func WithFFmpegBinary(binary string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Media.FFmpegBinary = binary
	}
}
