package api

import (
	"context"
	"errors"
	"log/slog"

	"livecap/internal/config"
	"livecap/internal/logging"
	"livecap/internal/services"
	"livecap/internal/session"
	"livecap/internal/store"
)

// SessionService drives session lifecycle for the HTTP and IPC surfaces.
type SessionService struct {
	cfg    *config.Config
	reg    *session.Registry
	db     *store.Store
	logger *slog.Logger

	// sessionOpts are forwarded to every new session. Tests use them to
	// substitute process launchers and recognizers.
	sessionOpts []session.Option
}

// NewSessionService wires the service to its registry and optional
// persistence.
func NewSessionService(cfg *config.Config, reg *session.Registry, db *store.Store, logger *slog.Logger, opts ...session.Option) *SessionService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SessionService{
		cfg:         cfg,
		reg:         reg,
		db:          db,
		logger:      logging.WithComponent(logger, "api"),
		sessionOpts: opts,
	}
}

// Create builds, registers, and starts a session. The session stays
// registered on start failure so its error state remains queryable.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (SessionView, error) {
	if req.Source == "" {
		return SessionView{}, services.Wrap(services.ErrValidation, "api", "create session", "Source is required", nil)
	}
	if req.Sink != "" && !config.KnownSink(req.Sink) {
		return SessionView{}, services.Wrap(services.ErrValidation, "api", "create session",
			"Unknown sink "+req.Sink, nil)
	}

	opts := s.sessionOpts
	if s.db != nil {
		opts = append([]session.Option{session.WithStore(s.db)}, opts...)
	}
	sess := session.New(s.cfg, session.Request{
		Source:       req.Source,
		Language:     req.Language,
		Model:        req.Model,
		ChunkSeconds: req.ChunkSeconds,
		SinkKind:     req.Sink,
	}, s.logger, opts...)
	s.reg.Add(sess)

	err := sess.Start(ctx)
	view := FromSnapshot(sess.Status())
	return view, err
}

// Status reports one session, falling back to the persisted record for
// sessions from a previous daemon run.
func (s *SessionService) Status(ctx context.Context, id string) (SessionView, error) {
	if sess, err := s.reg.Get(id); err == nil {
		return FromSnapshot(sess.Status()), nil
	}
	if s.db == nil {
		return SessionView{}, services.Wrap(services.ErrNotFound, "api", "status", "No session with id "+id, nil)
	}
	rec, err := s.db.GetSession(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	cues, err := s.db.CuesForSession(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return FromRecord(rec, cues), nil
}

// Stop signals a live session to stop.
func (s *SessionService) Stop(id string) error {
	sess, err := s.reg.Get(id)
	if err != nil {
		return err
	}
	sess.Stop()
	return nil
}

// Cleanup stops a session, removes its scratch resources, and forgets it.
func (s *SessionService) Cleanup(id string) error {
	sess, err := s.reg.Get(id)
	if err != nil {
		return err
	}
	sess.Cleanup()
	s.reg.Remove(id)
	return nil
}

// List returns live sessions plus persisted sessions from earlier runs.
func (s *SessionService) List(ctx context.Context) ([]SessionView, error) {
	seen := make(map[string]struct{})
	var views []SessionView
	for _, sess := range s.reg.List() {
		views = append(views, FromSnapshot(sess.Status()))
		seen[sess.ID()] = struct{}{}
	}
	if s.db == nil {
		return views, nil
	}
	records, err := s.db.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		views = append(views, FromRecord(rec, nil))
	}
	return views, nil
}

// IsNotFound reports whether an error is a missing-session lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, services.ErrNotFound)
}

// IsValidation reports whether an error is a rejected request.
func IsValidation(err error) bool {
	return errors.Is(err, services.ErrValidation)
}
