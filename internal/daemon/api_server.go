package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"livecap/internal/api"
	"livecap/internal/config"
	"livecap/internal/logging"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
	stopOnce sync.Once
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.WithComponent(logger, "http"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/sessions", srv.handleSessions)
	mux.HandleFunc("/api/sessions/", srv.handleSession)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.stopOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	})
}

// Addr reports the bound listen address, empty before start.
func (s *apiServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		views, err := s.daemon.Sessions().List(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.SessionListResponse{Sessions: views})
	case http.MethodPost:
		var req api.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		view, err := s.daemon.Sessions().Create(r.Context(), req)
		if err != nil {
			if api.IsValidation(err) {
				s.writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			// Startup failures still registered the session; report both.
			s.writeJSON(w, http.StatusBadGateway, api.SessionResponse{Session: view})
			return
		}
		s.writeJSON(w, http.StatusCreated, api.SessionResponse{Session: view})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		view, err := s.daemon.Sessions().Status(r.Context(), id)
		if err != nil {
			s.writeLookupError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.SessionResponse{Session: view})
	case action == "stop" && r.Method == http.MethodPost:
		if err := s.daemon.Sessions().Stop(id); err != nil {
			s.writeLookupError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"stopped": true})
	case action == "cleanup" && r.Method == http.MethodPost:
		if err := s.daemon.Sessions().Cleanup(id); err != nil {
			s.writeLookupError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"cleaned": true})
	case action == "stream" && r.Method == http.MethodGet:
		s.handleStream(w, r, id)
	default:
		s.writeError(w, http.StatusNotFound, "unknown session action")
	}
}

// handleStream copies the session's sink output to the client. Works for
// file and pipe sinks; segmented sinks are served per-file by a player
// fetching the playlist directly.
func (s *apiServer) handleStream(w http.ResponseWriter, r *http.Request, id string) {
	view, err := s.daemon.Sessions().Status(r.Context(), id)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	if view.SinkPath == "" {
		s.writeError(w, http.StatusConflict, "session sink is not readable over http")
		return
	}

	file, err := os.Open(view.SinkPath)
	if err != nil {
		s.writeError(w, http.StatusConflict, "sink not available: "+err.Error())
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentTypeForSink(view.SinkKind))
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 64*1024)
	for {
		n, readErr := file.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil && readErr != io.EOF {
			return
		}
		if readErr == io.EOF {
			// The encoder may still be appending. Keep following while
			// the session is live, otherwise the stream is complete.
			view, err := s.daemon.Sessions().Status(r.Context(), id)
			if err != nil || view.Status != "running" {
				return
			}
			select {
			case <-r.Context().Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
			continue
		}
		select {
		case <-r.Context().Done():
			return
		default:
		}
	}
}

func contentTypeForSink(kind string) string {
	switch kind {
	case config.SinkFragMP4:
		return "video/mp4"
	case config.SinkHLS:
		return "application/vnd.apple.mpegurl"
	default:
		return "video/mp2t"
	}
}

func (s *apiServer) writeLookupError(w http.ResponseWriter, err error) {
	if api.IsNotFound(err) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
