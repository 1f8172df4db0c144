package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"livecap/internal/config"
	"livecap/internal/daemon"
	"livecap/internal/ipc"
	"livecap/internal/logging"
	"livecap/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewForDir(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	db, err := store.Open(cfg)
	if err != nil {
		logger.Error("open session store", logging.Error(err))
		return
	}

	d, err := daemon.New(cfg, db, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = db.Close()
		return
	}
	defer d.Close()

	socketPath := buildSocketPath(cfg)
	ipcServer, err := ipc.NewServer(ctx, socketPath, d, logger, cancel)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("livecapd shutting down")
}

func buildSocketPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "livecapd.sock")
}
