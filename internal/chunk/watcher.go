package chunk

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"livecap/internal/logging"
	"livecap/internal/media"
)

// Chunk describes one discovered, settled, non-empty audio segment.
// Nominal timing derives from the index and the configured segment length.
type Chunk struct {
	Index int
	Path  string
	Start float64
	End   float64
}

// Watcher claims chunk indices from a scratch directory exactly once.
type Watcher struct {
	dir          string
	chunkSeconds int
	lookahead    int
	settle       time.Duration
	logger       *slog.Logger

	watermark int
	firstSeen map[int]time.Time

	notify *fsnotify.Watcher
	wake   chan struct{}
}

// Option adjusts watcher construction.
type Option func(*Watcher)

// WithLookahead bounds how many indices past the watermark each poll
// inspects.
func WithLookahead(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.lookahead = n
		}
	}
}

// WithSettleDelay sets how long a discovered file must sit before it is
// considered complete.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.settle = d
		}
	}
}

// WithStartIndex sets the first index to claim.
func WithStartIndex(index int) Option {
	return func(w *Watcher) {
		if index > 0 {
			w.watermark = index
		}
	}
}

// WithLogger attaches a logger for discovery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher builds a watcher over dir. The directory must already exist;
// notification support is best effort and its absence is not an error.
func NewWatcher(dir string, chunkSeconds int, opts ...Option) *Watcher {
	w := &Watcher{
		dir:          dir,
		chunkSeconds: chunkSeconds,
		lookahead:    10,
		settle:       500 * time.Millisecond,
		logger:       logging.NewNop(),
		firstSeen:    make(map[int]time.Time),
		wake:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}

	if notify, err := fsnotify.NewWatcher(); err == nil {
		if err := notify.Add(dir); err == nil {
			w.notify = notify
			go w.drainEvents()
		} else {
			_ = notify.Close()
			w.logger.Debug("directory watch unavailable, polling only", logging.Error(err))
		}
	}
	return w
}

func (w *Watcher) drainEvents() {
	for {
		select {
		case _, ok := <-w.notify.Events:
			if !ok {
				return
			}
			select {
			case w.wake <- struct{}{}:
			default:
			}
		case _, ok := <-w.notify.Errors:
			if !ok {
				return
			}
		}
	}
}

// Watermark returns the next index that has not been claimed.
func (w *Watcher) Watermark() int { return w.watermark }

// Poll scans the lookahead window and returns newly claimed, ready chunks
// in ascending index order. An index is claimed at most once, even across
// errors; zero-size chunks are consumed without being returned.
func (w *Watcher) Poll() []Chunk {
	now := time.Now()
	var ready []Chunk
	blocked := false

	for i := w.watermark; i < w.watermark+w.lookahead; i++ {
		path := filepath.Join(w.dir, media.ChunkFileName(i))
		info, err := os.Stat(path)
		if err != nil {
			// The segmenter emits indices in order, so nothing past a
			// missing index can exist yet.
			break
		}

		seen, ok := w.firstSeen[i]
		if !ok {
			w.firstSeen[i] = now
			seen = now
		}
		// Claims stay strictly ordered: once one index is held back,
		// later indices only accrue sighting time.
		if blocked || now.Sub(seen) < w.settle {
			blocked = true
			continue
		}

		// Claimed from here on: the index is consumed whether or not it
		// yields audio.
		delete(w.firstSeen, i)
		w.watermark = i + 1

		if info.Size() == 0 {
			w.logger.Debug("skipping empty chunk", logging.Int(logging.FieldChunk, i))
			continue
		}

		ready = append(ready, Chunk{
			Index: i,
			Path:  path,
			Start: float64(i * w.chunkSeconds),
			End:   float64((i + 1) * w.chunkSeconds),
		})
	}
	return ready
}

// Wait sleeps until the poll interval elapses, a directory event arrives,
// or ctx is cancelled.
func (w *Watcher) Wait(ctx context.Context, interval time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(interval):
	case <-w.wake:
	}
}

// Close releases the notification watch.
func (w *Watcher) Close() error {
	if w.notify != nil {
		return w.notify.Close()
	}
	return nil
}
