package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"livecap/internal/services"
	"livecap/internal/srt"
)

// Status enumerates session lifecycle states. Stopped and error are
// terminal.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusStarting     Status = "starting"
	StatusRunning      Status = "running"
	StatusStopped      Status = "stopped"
	StatusError        Status = "error"
)

// Terminal reports whether the status ends a session's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusStopped || s == StatusError
}

// SessionRecord is the persisted view of a session.
type SessionRecord struct {
	ID           string
	Source       string
	Language     string
	Model        string
	SinkKind     string
	Status       Status
	ErrorMessage string
	SubtitlePath string
	ScratchDir   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const timeLayout = time.RFC3339Nano

// SaveSession inserts or replaces a session record.
func (s *Store) SaveSession(ctx context.Context, rec *SessionRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	return s.execWithRetry(ctx, `
		INSERT INTO sessions (id, source, language, model, sink_kind, status,
			error_message, subtitle_path, scratch_dir, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			language = excluded.language,
			model = excluded.model,
			sink_kind = excluded.sink_kind,
			status = excluded.status,
			error_message = excluded.error_message,
			subtitle_path = excluded.subtitle_path,
			scratch_dir = excluded.scratch_dir,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Source, rec.Language, rec.Model, rec.SinkKind, string(rec.Status),
		rec.ErrorMessage, rec.SubtitlePath, rec.ScratchDir,
		rec.CreatedAt.Format(timeLayout), rec.UpdatedAt.Format(timeLayout),
	)
}

// UpdateStatus moves a session to a new status, recording the error
// message for the error state.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status, errorMessage string) error {
	return s.execWithRetry(ctx, `
		UPDATE sessions SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		string(status), errorMessage, time.Now().UTC().Format(timeLayout), id,
	)
}

// GetSession looks up one session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, language, model, sink_kind, status,
			error_message, subtitle_path, scratch_dir, created_at, updated_at
		FROM sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get session",
			"No session with id "+id, nil)
	}
	return rec, err
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]*SessionRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, language, model, sink_kind, status,
			error_message, subtitle_path, scratch_dir, created_at, updated_at
		FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []*SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteSession removes a session and its cues.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.execWithRetry(ctx, "DELETE FROM sessions WHERE id = ?", id)
}

// AppendCue persists one cue for a session.
func (s *Store) AppendCue(ctx context.Context, sessionID string, cue srt.Cue) error {
	return s.execWithRetry(ctx, `
		INSERT INTO cues (session_id, idx, start_seconds, end_seconds, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, idx) DO NOTHING`,
		sessionID, cue.Index, cue.Start, cue.End, cue.Text,
		time.Now().UTC().Format(timeLayout),
	)
}

// CuesForSession returns a session's cues in index order.
func (s *Store) CuesForSession(ctx context.Context, sessionID string) ([]srt.Cue, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, start_seconds, end_seconds, text
		FROM cues WHERE session_id = ? ORDER BY idx`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cues: %w", err)
	}
	defer rows.Close()

	var cues []srt.Cue
	for rows.Next() {
		var cue srt.Cue
		if err := rows.Scan(&cue.Index, &cue.Start, &cue.End, &cue.Text); err != nil {
			return nil, fmt.Errorf("scan cue: %w", err)
		}
		cues = append(cues, cue)
	}
	return cues, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	var (
		rec                  SessionRecord
		status               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &rec.Source, &rec.Language, &rec.Model, &rec.SinkKind,
		&status, &rec.ErrorMessage, &rec.SubtitlePath, &rec.ScratchDir,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	rec.Status = Status(status)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
