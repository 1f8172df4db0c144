package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"livecap/internal/chunk"
	"livecap/internal/config"
	"livecap/internal/encoder"
	"livecap/internal/logging"
	"livecap/internal/media"
	"livecap/internal/process"
	"livecap/internal/services"
	"livecap/internal/srt"
	"livecap/internal/store"
	"livecap/internal/subtitle"
	"livecap/internal/transcribe"
)

// Request carries the caller-supplied parameters for a new session.
// Zero-valued fields fall back to the configuration.
type Request struct {
	Source       string
	Language     string
	Model        string
	ChunkSeconds int
	SinkKind     string
}

type transcriberFactory func(config.Transcriber, *slog.Logger) (transcribe.Transcriber, error)

type startFunc func(name string, args []string, opts ...process.Option) (*process.Handle, error)

// Session owns every resource of one live transcription. The running flag
// is the sole cooperative-cancellation signal; external processes are
// terminated explicitly on stop.
type Session struct {
	id        string
	cfg       *config.Config
	req       Request
	logger    *slog.Logger
	db        *store.Store
	createdAt time.Time

	sessionDir string
	chunkDir   string
	sink       media.Sink

	subs      *subtitle.Store
	watcher   *chunk.Watcher
	trans     transcribe.Transcriber
	sup       *encoder.Supervisor
	segmenter *process.Handle

	running    atomic.Bool
	workerDone chan struct{}

	mu      sync.Mutex
	status  store.Status
	errMsg  string
	cleaned bool

	newTranscriber transcriberFactory
	encoderOpts    []encoder.Option
	startSegmenter startFunc
}

// Option adjusts a Session at construction time.
type Option func(*Session)

// WithStore enables persistence of the session record and its cues.
func WithStore(db *store.Store) Option {
	return func(s *Session) { s.db = db }
}

// WithTranscriberFactory substitutes recognizer construction.
func WithTranscriberFactory(factory transcriberFactory) Option {
	return func(s *Session) {
		if factory != nil {
			s.newTranscriber = factory
		}
	}
}

// WithEncoderOptions forwards options to the encoder supervisor.
func WithEncoderOptions(opts ...encoder.Option) Option {
	return func(s *Session) { s.encoderOpts = append(s.encoderOpts, opts...) }
}

// WithSegmenterStart substitutes the segmenter process launcher.
func WithSegmenterStart(start startFunc) Option {
	return func(s *Session) {
		if start != nil {
			s.startSegmenter = start
		}
	}
}

// New builds a session in the initializing state. Nothing is spawned until
// Start is called.
func New(cfg *config.Config, req Request, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	id := uuid.NewString()
	s := &Session{
		id:        id,
		cfg:       cfg,
		req:       req,
		createdAt: time.Now().UTC(),
		status:    store.StatusInitializing,
		newTranscriber: func(tc config.Transcriber, l *slog.Logger) (transcribe.Transcriber, error) {
			return transcribe.New(tc, l)
		},
		startSegmenter: process.Start,
	}
	s.logger = logging.WithComponent(logger, "session").With(logging.String(logging.FieldSessionID, id))
	s.sessionDir = filepath.Join(cfg.Paths.ScratchDir, id)
	s.chunkDir = filepath.Join(s.sessionDir, "chunks")
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SubtitlePath returns the on-disk SRT location.
func (s *Session) SubtitlePath() string {
	return filepath.Join(s.sessionDir, "subtitles.srt")
}

// Sink describes where the encoder writes.
func (s *Session) Sink() media.Sink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink
}

func (s *Session) chunkSeconds() int {
	if s.req.ChunkSeconds > 0 {
		return s.req.ChunkSeconds
	}
	return s.cfg.Media.ChunkSeconds
}

func (s *Session) sinkKind() string {
	if s.req.SinkKind != "" {
		return s.req.SinkKind
	}
	return s.cfg.Media.Sink
}

func (s *Session) transcriberConfig() config.Transcriber {
	tc := s.cfg.Transcriber
	if s.req.Language != "" {
		tc.Language = s.req.Language
	}
	if s.req.Model != "" {
		tc.Model = s.req.Model
	}
	return tc
}

// Start acquires the recognizer, prepares scratch resources, launches the
// encoder and segmenter, and spawns the processing worker. Any failure
// moves the session to the error state; partially created resources are
// released by Cleanup.
func (s *Session) Start(ctx context.Context) error {
	s.setStatus(store.StatusStarting, "")
	if err := s.start(ctx); err != nil {
		s.fail(err)
		return err
	}
	s.setStatus(store.StatusRunning, "")
	s.logger.Info("session running",
		logging.String("source", s.req.Source),
		logging.String("sink", s.sinkKind()),
	)
	return nil
}

func (s *Session) start(ctx context.Context) error {
	if s.req.Source == "" {
		return services.Wrap(services.ErrValidation, "session", "start", "Source is required", nil)
	}

	if err := os.MkdirAll(s.chunkDir, 0o755); err != nil {
		return services.Wrap(services.ErrSpawn, "session", "start", "Failed to create scratch directory", err)
	}

	trans, err := s.newTranscriber(s.transcriberConfig(), s.logger)
	if err != nil {
		return err
	}

	subs := subtitle.NewStore(s.SubtitlePath(), s.logger)
	if err := subs.Seed(); err != nil {
		return services.Wrap(services.ErrSpawn, "session", "start", "Failed to seed subtitle file", err)
	}

	// The registry may already hand this session to status queries, so
	// every field a concurrent reader can touch is published under mu.
	s.mu.Lock()
	s.trans = trans
	s.subs = subs
	s.mu.Unlock()

	sink := media.NewSink(s.sinkKind(), s.sessionDir, s.id, s.cfg.Media.HTTPPushPort)
	if err := sink.Prepare(); err != nil {
		return services.Wrap(services.ErrSpawn, "session", "start", "Failed to prepare output sink", err)
	}
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()

	sup := encoder.NewSupervisor(encoder.Config{
		FFmpegBinary: s.cfg.Media.FFmpegBinary,
		Source:       s.req.Source,
		SubtitlePath: s.SubtitlePath(),
		Style:        s.cfg.Media.SubtitleStyle,
		Sink:         sink,

		RestartEveryCues: s.cfg.Media.RestartEveryCues,
		TerminateGrace:   time.Duration(s.cfg.Media.TerminateGraceSeconds) * time.Second,
		VerifyWindow:     time.Duration(s.cfg.Media.VerifyStartupSeconds) * time.Second,
	}, s.logger, s.encoderOpts...)
	s.mu.Lock()
	s.sup = sup
	s.mu.Unlock()
	if err := sup.Launch(); err != nil {
		return err
	}

	segArgs := media.SegmenterArgs(s.req.Source, s.cfg.Media.AudioTrack, s.cfg.Media.SampleRate,
		s.chunkSeconds(), media.ChunkPattern(s.chunkDir))
	segmenter, err := s.startSegmenter(s.cfg.Media.FFmpegBinary, segArgs, process.WithStderrTail(4096))
	if err != nil {
		return services.Wrap(services.ErrSpawn, "session", "start",
			"Failed to start audio segmenter "+s.cfg.Media.FFmpegBinary, err)
	}

	watcher := chunk.NewWatcher(s.chunkDir, s.chunkSeconds(),
		chunk.WithLookahead(s.cfg.Media.LookaheadChunks),
		chunk.WithSettleDelay(time.Duration(s.cfg.Media.SettleDelayMillis)*time.Millisecond),
		chunk.WithLogger(s.logger),
	)
	s.mu.Lock()
	s.segmenter = segmenter
	s.watcher = watcher
	s.workerDone = make(chan struct{})
	s.mu.Unlock()

	s.persistRecord(ctx)

	s.running.Store(true)
	go s.worker()
	return nil
}

// worker is the session's single processing loop. It runs until the
// running flag clears or both external processes are gone.
func (s *Session) worker() {
	defer close(s.workerDone)

	ctx := context.Background()
	interval := time.Duration(s.cfg.Media.PollIntervalMillis) * time.Millisecond

	for s.running.Load() {
		segAlive := s.segmenter.IsAlive()
		encAlive := s.sup.Alive()
		if !segAlive && !encAlive {
			s.finish()
			return
		}
		if !encAlive && segAlive {
			code, detail := s.sup.CrashDiagnostics()
			msg := fmt.Sprintf("Encoder exited with code %d", code)
			if detail != "" {
				msg += ": " + detail
			}
			s.fail(services.Wrap(services.ErrEncoderCrashed, "session", "worker", msg, nil))
			s.terminateProcesses()
			return
		}

		for _, ready := range s.watcher.Poll() {
			if !s.running.Load() {
				return
			}
			if err := s.processChunk(ctx, ready); err != nil {
				s.fail(err)
				s.terminateProcesses()
				return
			}
		}

		// Bounded wait between polls; a stop request takes effect at
		// the next loop check.
		s.watcher.Wait(ctx, interval)
	}
}

// processChunk transcribes one chunk, records the cue, rewrites the
// subtitle file, and deletes the chunk. Recognition failures skip the
// chunk; only encoder failures are returned.
func (s *Session) processChunk(ctx context.Context, ready chunk.Chunk) error {
	defer func() {
		if err := os.Remove(ready.Path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to delete processed chunk",
				logging.String("path", ready.Path), logging.Error(err))
		}
	}()

	text, err := s.trans.Transcribe(ctx, ready.Path)
	if err != nil {
		s.logger.Warn("chunk transcription failed, skipping",
			logging.Int(logging.FieldChunk, ready.Index),
			logging.Error(err),
		)
		return nil
	}

	cue, ok := s.subs.Append(ready.Start, ready.End, text)
	if !ok {
		return nil
	}
	if err := s.subs.Flush(); err != nil {
		s.logger.Warn("subtitle flush failed", logging.Error(err))
	}
	s.persistCue(ctx, cue)
	s.logger.Info("cue added",
		logging.Int("cue_index", cue.Index),
		logging.Int(logging.FieldChunk, ready.Index),
		logging.Int("text_len", len(cue.Text)),
	)

	return s.sup.MaybeRestart(s.subs.CueCount())
}

// Stop clears the running flag and terminates the external processes. The
// worker exits at its next loop boundary.
func (s *Session) Stop() {
	wasRunning := s.running.CompareAndSwap(true, false)
	s.terminateProcesses()
	s.mu.Lock()
	done := s.workerDone
	s.mu.Unlock()
	if done != nil {
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			s.logger.Warn("worker did not exit in time")
		}
	}
	if wasRunning {
		s.mu.Lock()
		terminal := s.status.Terminal()
		s.mu.Unlock()
		if !terminal {
			s.setStatus(store.StatusStopped, "")
		}
		s.logger.Info("session stopped")
	}
}

func (s *Session) terminateProcesses() {
	s.mu.Lock()
	sup, segmenter, watcher := s.sup, s.segmenter, s.watcher
	s.mu.Unlock()
	if sup != nil {
		sup.Stop()
	}
	if segmenter != nil {
		grace := time.Duration(s.cfg.Media.TerminateGraceSeconds) * time.Second
		segmenter.Terminate(grace)
	}
	if watcher != nil {
		_ = watcher.Close()
	}
}

// Cleanup stops the session and removes its scratch footprint: subtitle
// file, sink path, and the chunk directory. Removal is best effort; a
// leftover file is logged and never surfaced to the caller. Idempotent.
func (s *Session) Cleanup() {
	s.Stop()

	s.mu.Lock()
	alreadyCleaned := s.cleaned
	s.cleaned = true
	sink := s.sink
	s.mu.Unlock()
	if alreadyCleaned {
		return
	}

	incomplete := false
	if err := sink.Remove(); err != nil {
		incomplete = true
		s.logger.Warn("failed to remove sink",
			logging.Error(services.Wrap(services.ErrCleanup, "session", "cleanup", "Failed to remove sink", err)))
	}
	if err := os.RemoveAll(s.sessionDir); err != nil {
		incomplete = true
		s.logger.Warn("failed to remove scratch directory",
			logging.Error(services.Wrap(services.ErrCleanup, "session", "cleanup", "Failed to remove scratch directory", err)))
	}
	if incomplete {
		s.logger.Warn("session cleanup incomplete")
		return
	}
	s.logger.Info("session cleaned up")
}

// finish handles the natural end of the input: both processes exited on
// their own.
func (s *Session) finish() {
	s.mu.Lock()
	terminal := s.status.Terminal()
	s.mu.Unlock()
	if terminal {
		return
	}
	s.running.Store(false)
	s.setStatus(store.StatusStopped, "")
	s.logger.Info("session finished", logging.Int("cue_count", s.subs.CueCount()))
}

func (s *Session) fail(err error) {
	s.running.Store(false)
	s.setStatus(store.StatusError, err.Error())
	s.logger.Error("session failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, errorHint(err)),
	)
}

func errorHint(err error) string {
	switch {
	case services.Fatal(err):
		return "check that ffmpeg and the recognizer are installed and the source is readable"
	default:
		return "see preceding log entries"
	}
}

func (s *Session) setStatus(status store.Status, errMsg string) {
	s.mu.Lock()
	s.status = status
	s.errMsg = errMsg
	s.mu.Unlock()
	if s.db != nil {
		if err := s.db.UpdateStatus(context.Background(), s.id, status, errMsg); err != nil {
			s.logger.Warn("failed to persist status", logging.Error(err))
		}
	}
}

func (s *Session) persistRecord(ctx context.Context) {
	if s.db == nil {
		return
	}
	tc := s.transcriberConfig()
	rec := &store.SessionRecord{
		ID:           s.id,
		Source:       s.req.Source,
		Language:     tc.Language,
		Model:        tc.Model,
		SinkKind:     s.sinkKind(),
		Status:       store.StatusStarting,
		SubtitlePath: s.SubtitlePath(),
		ScratchDir:   s.sessionDir,
		CreatedAt:    s.createdAt,
	}
	if err := s.db.SaveSession(ctx, rec); err != nil {
		s.logger.Warn("failed to persist session record", logging.Error(err))
	}
}

func (s *Session) persistCue(ctx context.Context, cue srt.Cue) {
	if s.db == nil {
		return
	}
	if err := s.db.AppendCue(ctx, s.id, cue); err != nil {
		s.logger.Warn("failed to persist cue", logging.Error(err))
	}
}

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	ID         string
	Source     string
	Status     store.Status
	Error      string
	CueCount   int
	RecentCues []srt.Cue
	SinkKind   string
	SinkPath   string
	CreatedAt  time.Time
}

// recentCueWindow bounds how many cues a status query returns.
const recentCueWindow = 10

// Status reports the current state and the newest cues.
func (s *Session) Status() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		ID:        s.id,
		Source:    s.req.Source,
		Status:    s.status,
		Error:     s.errMsg,
		SinkKind:  s.sink.Kind,
		SinkPath:  s.sink.Path,
		CreatedAt: s.createdAt,
	}
	subs := s.subs
	s.mu.Unlock()
	if snap.SinkKind == "" {
		snap.SinkKind = s.sinkKind()
	}
	if subs != nil {
		snap.CueCount = subs.CueCount()
		snap.RecentCues = subs.Recent(recentCueWindow)
	}
	return snap
}
