package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/thenoetrevino/circles/internal/config"
	"github.com/thenoetrevino/circles/internal/daemon"
	"github.com/thenoetrevino/circles/internal/logging"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCloser, err := logging.Init(logging.Options{File: "daemon.log", Level: cfg.LogLevel, MaxSizeMB: cfg.LogMaxSizeMB})
	if err != nil {
		slog.Error("failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer func() { _ = logCloser.Close() }()

	// Ensure the socket directory exists with secure permissions
	if err := os.MkdirAll(filepath.Dir(cfg.SocketPath), 0o700); err != nil {
		slog.Error("failed to create socket directory", "error", err)
		os.Exit(1)
	}

	// Create and start the daemon server
	server, err := daemon.NewServer(cfg.SocketPath)
	if err != nil {
		slog.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	slog.Info("circles daemon starting", "socket_path", cfg.SocketPath, "pid", os.Getpid())

	// Start the daemon (blocks until shutdown)
	if err := server.Start(ctx); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}

	slog.Info("circles daemon shutting down gracefully")
}
