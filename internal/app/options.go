package app

import (
	"database/sql"
	"log/slog"

	"github.com/thenoetrevino/circles/internal/auth"
	"github.com/thenoetrevino/circles/internal/events"
	"github.com/thenoetrevino/circles/internal/localstore"
	"github.com/thenoetrevino/circles/internal/syncer"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient events.EventPublisher
	logger      *slog.Logger
	kv          localstore.KV
	db          *sql.DB
	authOpts    []auth.Option
	syncOpts    []syncer.Option
}

// WithEventPublisher connects the app to the notification daemon
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithKV replaces the on-disk key/value store (tests use localstore.MemoryKV)
func WithKV(kv localstore.KV) Option {
	return func(cfg *appConfig) {
		cfg.kv = kv
	}
}

// WithDB uses an already opened database. The app does not close it.
func WithDB(db *sql.DB) Option {
	return func(cfg *appConfig) {
		cfg.db = db
	}
}

// WithAuthOptions passes options through to the auth service
func WithAuthOptions(opts ...auth.Option) Option {
	return func(cfg *appConfig) {
		cfg.authOpts = append(cfg.authOpts, opts...)
	}
}

// WithSyncOptions passes options through to the sync controller
func WithSyncOptions(opts ...syncer.Option) Option {
	return func(cfg *appConfig) {
		cfg.syncOpts = append(cfg.syncOpts, opts...)
	}
}
