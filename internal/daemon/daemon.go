package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"livecap/internal/api"
	"livecap/internal/config"
	"livecap/internal/deps"
	"livecap/internal/logging"
	"livecap/internal/session"
	"livecap/internal/store"
)

// Daemon coordinates live sessions and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *store.Store
	reg    *session.Registry
	svc    *api.SessionService

	lockPath string
	lock     *flock.Flock

	apiSrv  *apiServer
	running atomic.Bool
}

// New constructs a daemon. Session options are forwarded to every session
// the daemon creates.
func New(cfg *config.Config, db *store.Store, logger *slog.Logger, sessionOpts ...session.Option) (*Daemon, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	reg := session.NewRegistry()
	lockPath := filepath.Join(cfg.Paths.LogDir, "livecapd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		db:       db,
		reg:      reg,
		svc:      api.NewSessionService(cfg, reg, db, logger, sessionOpts...),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.apiSrv = newAPIServer(cfg, d, logger)
	return d, nil
}

// Sessions exposes the control service shared with the IPC layer.
func (d *Daemon) Sessions() *api.SessionService { return d.svc }

// LockPath reports the daemon lock file location.
func (d *Daemon) LockPath() string { return d.lockPath }

// APIAddr reports the HTTP control API listen address. Empty when the
// API is disabled or the daemon has not started.
func (d *Daemon) APIAddr() string {
	if d.apiSrv == nil {
		return ""
	}
	return d.apiSrv.Addr()
}

// Start acquires the daemon lock and begins serving the control API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another livecap daemon instance is already running")
	}

	if d.apiSrv != nil {
		if err := d.apiSrv.start(ctx); err != nil {
			_ = d.lock.Unlock()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api_bind", d.cfg.Paths.APIBind),
	)
	return nil
}

// Stop shuts down every session, the API server, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.reg.StopAll()
	if d.apiSrv != nil {
		d.apiSrv.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases every resource held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Status reports daemon runtime information including tool availability.
func (d *Daemon) Status() api.DaemonStatus {
	statuses := deps.CheckBinaries(deps.Required(d.cfg))
	views := make([]api.DependencyStatus, 0, len(statuses)+1)
	ffmpegAvailable := false
	for _, status := range statuses {
		if status.Name == "FFmpeg" && status.Available {
			ffmpegAvailable = true
		}
		views = append(views, api.DependencyStatus(status))
	}
	if ffmpegAvailable {
		views = append(views, api.DependencyStatus(deps.CheckSubtitleFilter(d.cfg.Media.FFmpegBinary)))
	}

	return api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		DBPath:       d.db.Path(),
		SessionCount: len(d.reg.List()),
		Dependencies: views,
	}
}
