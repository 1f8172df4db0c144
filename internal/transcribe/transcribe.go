package transcribe

import (
	"context"
	"log/slog"
	"strings"

	"livecap/internal/config"
	"livecap/internal/services"
)

// Transcriber converts a single audio chunk into plain text. An empty
// result means the chunk carried no recognizable speech.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// New selects the engine named by the configuration.
func New(cfg config.Transcriber, logger *slog.Logger) (Transcriber, error) {
	switch strings.TrimSpace(cfg.Engine) {
	case "", config.EngineWhisperCPP:
		return NewWhisperCPP(cfg, logger)
	default:
		return nil, services.Wrap(services.ErrValidation, "transcriber", "select engine",
			"Unknown transcription engine "+cfg.Engine, nil)
	}
}
