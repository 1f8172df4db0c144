package api

// CreateSessionRequest starts a new transcription session. Zero-valued
// fields fall back to the daemon configuration.
type CreateSessionRequest struct {
	Source       string `json:"source"`
	Language     string `json:"language,omitempty"`
	Model        string `json:"model,omitempty"`
	ChunkSeconds int    `json:"chunk_seconds,omitempty"`
	Sink         string `json:"sink,omitempty"`
}

// CueView is the JSON rendition of one subtitle cue.
type CueView struct {
	Index         int     `json:"index"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	StartTimecode string  `json:"start_timecode"`
	EndTimecode   string  `json:"end_timecode"`
	Text          string  `json:"text"`
}

// SessionView is the JSON rendition of a session's state.
type SessionView struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CueCount   int       `json:"cue_count"`
	RecentCues []CueView `json:"recent_cues,omitempty"`
	SinkKind   string    `json:"sink_kind"`
	SinkPath   string    `json:"sink_path,omitempty"`
	CreatedAt  string    `json:"created_at"`
}

// SessionListResponse wraps a session listing.
type SessionListResponse struct {
	Sessions []SessionView `json:"sessions"`
}

// SessionResponse wraps a single session.
type SessionResponse struct {
	Session SessionView `json:"session"`
}

// DependencyStatus reports availability of one external tool.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus reports daemon runtime information.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	LockFilePath string             `json:"lock_file_path"`
	DBPath       string             `json:"db_path"`
	SessionCount int                `json:"session_count"`
	Dependencies []DependencyStatus `json:"dependencies,omitempty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
