package subtitle

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"livecap/internal/logging"
	"livecap/internal/srt"
)

// placeholderText seeds the subtitle file before the first real cue lands.
// Players and the burn-in filter reject an empty SRT document.
const placeholderText = "Loading subtitles..."

// Store collects cues in arrival order and rewrites the backing SRT file on
// every flush so readers always observe a complete document.
type Store struct {
	mu     sync.RWMutex
	path   string
	cues   []srt.Cue
	logger *slog.Logger
}

// NewStore binds a store to its subtitle file path. The file is not touched
// until Seed or Flush is called.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:   path,
		logger: logging.WithComponent(logger, "subtitles"),
	}
}

// Path reports the backing subtitle file.
func (s *Store) Path() string { return s.path }

// Seed writes the placeholder document so the encoder has a valid subtitle
// file to read before any speech has been recognized.
func (s *Store) Seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDocument(s.renderLocked())
}

// Append records a cue for the given chunk window. Whitespace-only text is
// dropped without consuming an index. The returned cue carries the assigned
// index.
func (s *Store) Append(start, end float64, text string) (srt.Cue, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return srt.Cue{}, false
	}
	if end <= start {
		end = start + 0.5
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cue := srt.Cue{
		Index: len(s.cues) + 1,
		Start: start,
		End:   end,
		Text:  text,
	}
	s.cues = append(s.cues, cue)
	return cue, true
}

// Snapshot returns a copy of all cues in append order.
func (s *Store) Snapshot() []srt.Cue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]srt.Cue, len(s.cues))
	copy(out, s.cues)
	return out
}

// CueCount reports how many cues have been appended.
func (s *Store) CueCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cues)
}

// Recent returns up to n of the newest cues in append order.
func (s *Store) Recent(n int) []srt.Cue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || len(s.cues) == 0 {
		return nil
	}
	if n > len(s.cues) {
		n = len(s.cues)
	}
	out := make([]srt.Cue, n)
	copy(out, s.cues[len(s.cues)-n:])
	return out
}

// Flush rewrites the subtitle file from the current snapshot. The document
// is staged to a temporary file and renamed into place so concurrent
// readers never see a half-written file.
func (s *Store) Flush() error {
	s.mu.RLock()
	doc := s.renderLocked()
	s.mu.RUnlock()
	return s.writeDocument(doc)
}

func (s *Store) renderLocked() string {
	if len(s.cues) == 0 {
		return srt.Render([]srt.Cue{{Index: 1, Start: 0, End: 1, Text: placeholderText}})
	}
	return srt.Render(s.cues)
}

func (s *Store) writeDocument(doc string) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("stage subtitle file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace subtitle file: %w", err)
	}
	return nil
}
