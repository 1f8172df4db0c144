package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"livecap/internal/daemon"
	"livecap/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. onShutdown,
// when non-nil, runs after a Shutdown RPC so the owning process can exit.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger, onShutdown func()) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx, shutdown: onShutdown}
	if err := rpcServer.RegisterName("Livecap", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually before the next start"))
	}
}

type service struct {
	daemon   *daemon.Daemon
	logger   *slog.Logger
	ctx      context.Context
	shutdown func()
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return logging.WithComponent(s.logger, "ipc")
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LockPath = status.LockFilePath
	resp.DBPath = status.DBPath
	resp.SessionCount = status.SessionCount
	resp.Dependencies = append(resp.Dependencies, status.Dependencies...)
	return nil
}

func (s *service) SessionCreate(req SessionCreateRequest, resp *SessionCreateResponse) error {
	s.log().Debug("session create requested", logging.String("source", req.Session.Source))
	view, err := s.daemon.Sessions().Create(s.ctx, req.Session)
	resp.Session = view
	if err != nil {
		return err
	}
	s.log().Info("session created via IPC",
		logging.String(logging.FieldSessionID, view.ID),
		logging.String(logging.FieldEventType, "session_create"))
	return nil
}

func (s *service) SessionList(_ SessionListRequest, resp *SessionListResponse) error {
	views, err := s.daemon.Sessions().List(s.ctx)
	if err != nil {
		return err
	}
	resp.Sessions = views
	return nil
}

func (s *service) SessionDescribe(req SessionDescribeRequest, resp *SessionDescribeResponse) error {
	if req.ID == "" {
		return errors.New("session describe requires an id")
	}
	view, err := s.daemon.Sessions().Status(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Session = view
	return nil
}

func (s *service) SessionStop(req SessionStopRequest, resp *SessionStopResponse) error {
	if req.ID == "" {
		return errors.New("session stop requires an id")
	}
	if err := s.daemon.Sessions().Stop(req.ID); err != nil {
		return err
	}
	resp.Stopped = true
	s.log().Info("session stopped via IPC",
		logging.String(logging.FieldSessionID, req.ID),
		logging.String(logging.FieldEventType, "session_stop"))
	return nil
}

func (s *service) SessionCleanup(req SessionCleanupRequest, resp *SessionCleanupResponse) error {
	if req.ID == "" {
		return errors.New("session cleanup requires an id")
	}
	if err := s.daemon.Sessions().Cleanup(req.ID); err != nil {
		return err
	}
	resp.Cleaned = true
	s.log().Info("session cleaned up via IPC",
		logging.String(logging.FieldSessionID, req.ID),
		logging.String(logging.FieldEventType, "session_cleanup"))
	return nil
}

func (s *service) Shutdown(_ ShutdownRequest, resp *ShutdownResponse) error {
	s.log().Info("daemon shutdown requested via IPC",
		logging.String(logging.FieldEventType, "daemon_shutdown"))
	resp.Stopping = true
	if s.shutdown != nil {
		// Deferred so the RPC response reaches the client first.
		go s.shutdown()
	}
	return nil
}
