package transcribe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"livecap/internal/config"
	"livecap/internal/services"
)

// Directories searched for ggml model files when the configuration names a
// model by size rather than by path.
var modelSearchDirs = []string{
	"~/.cache/whisper",
	"~/.local/share/whisper/models",
}

// ResolveModel maps a model name like "base" to a ggml model file. A value
// that already points at an existing file is used as-is.
func ResolveModel(model, modelDir string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		model = "base"
	}

	if expanded, err := config.ExpandPath(model); err == nil && fileExists(expanded) {
		return expanded, nil
	}

	dirs := make([]string, 0, len(modelSearchDirs)+1)
	if modelDir = strings.TrimSpace(modelDir); modelDir != "" {
		dirs = append(dirs, modelDir)
	}
	dirs = append(dirs, modelSearchDirs...)

	candidates := []string{
		fmt.Sprintf("ggml-%s.bin", model),
		model + ".bin",
	}
	for _, dir := range dirs {
		if expanded, err := config.ExpandPath(dir); err == nil {
			dir = expanded
		}
		for _, name := range candidates {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				return path, nil
			}
		}
	}

	return "", services.Wrap(services.ErrSpawn, "transcriber", "resolve model",
		fmt.Sprintf("Model %q not found; looked for %s in %s",
			model, strings.Join(candidates, ", "), strings.Join(dirs, ", ")), nil)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
