package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	ScratchDir string `toml:"scratch_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Transcriber contains speech recognition configuration.
type Transcriber struct {
	// Engine selects the recognizer variant. Currently "whispercpp".
	Engine string `toml:"engine"`
	// Binary is the whisper.cpp CLI executable name or path.
	Binary string `toml:"binary"`
	// Model is the model size name (tiny, base, small, medium, large).
	Model string `toml:"model"`
	// ModelDir is searched first for ggml model files before the
	// conventional whisper.cpp cache locations.
	ModelDir string `toml:"model_dir"`
	// Language is the default language hint; "auto" enables detection.
	Language string `toml:"language"`
}

// Media contains ffmpeg invocation and session timing configuration.
type Media struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	ChunkSeconds  int    `toml:"chunk_seconds"`
	SampleRate    int    `toml:"sample_rate"`
	AudioTrack    int    `toml:"audio_track"`
	Sink          string `toml:"sink"`
	SubtitleStyle string `toml:"subtitle_style"`

	// HTTPPushPort is the listen port used by the http_push sink.
	HTTPPushPort int `toml:"http_push_port"`

	// RestartEveryCues is the encoder restart cadence. 0 disables
	// restarts entirely, keeping the stream continuous at the cost of
	// subtitle freshness.
	RestartEveryCues int `toml:"restart_every_cues"`

	TerminateGraceSeconds int `toml:"terminate_grace_seconds"`
	VerifyStartupSeconds  int `toml:"verify_startup_seconds"`
	SettleDelayMillis     int `toml:"settle_delay_millis"`
	PollIntervalMillis    int `toml:"poll_interval_millis"`
	LookaheadChunks       int `toml:"lookahead_chunks"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Transcriber Transcriber `toml:"transcriber"`
	Media       Media       `toml:"media"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/livecap/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the annotated sample configuration to path, creating
// parent directories as needed.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("livecap.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories sessions and the daemon need.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ScratchDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
