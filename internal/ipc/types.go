package ipc

import "livecap/internal/api"

// SessionView mirrors the HTTP API session DTO for internal IPC callers.
type SessionView = api.SessionView

// SessionRequest mirrors the HTTP API create-session DTO.
type SessionRequest = api.CreateSessionRequest

// DependencyStatus describes availability of an external tool.
type DependencyStatus = api.DependencyStatus

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	LockPath     string             `json:"lock_path"`
	DBPath       string             `json:"db_path"`
	SessionCount int                `json:"session_count"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// SessionCreateRequest starts a new live captioning session.
type SessionCreateRequest struct {
	Session SessionRequest `json:"session"`
}

// SessionCreateResponse contains the created session.
type SessionCreateResponse struct {
	Session SessionView `json:"session"`
}

// SessionListRequest lists all known sessions.
type SessionListRequest struct{}

// SessionListResponse contains live and archived sessions.
type SessionListResponse struct {
	Sessions []SessionView `json:"sessions"`
}

// SessionDescribeRequest fetches a single session by id.
type SessionDescribeRequest struct {
	ID string `json:"id"`
}

// SessionDescribeResponse contains a single session.
type SessionDescribeResponse struct {
	Session SessionView `json:"session"`
}

// SessionStopRequest stops a running session.
type SessionStopRequest struct {
	ID string `json:"id"`
}

// SessionStopResponse indicates stop result.
type SessionStopResponse struct {
	Stopped bool `json:"stopped"`
}

// SessionCleanupRequest stops a session and removes its scratch output.
type SessionCleanupRequest struct {
	ID string `json:"id"`
}

// SessionCleanupResponse indicates cleanup result.
type SessionCleanupResponse struct {
	Cleaned bool `json:"cleaned"`
}

// ShutdownRequest asks the daemon process to stop all sessions and exit.
type ShutdownRequest struct{}

// ShutdownResponse indicates shutdown was initiated.
type ShutdownResponse struct {
	Stopping bool `json:"stopping"`
}
