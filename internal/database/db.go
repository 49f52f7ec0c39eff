// Package database is the sqlite backend of the remote board store
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

var pragmas = []string{
	// Required for the CASCADE on boards and grants
	"PRAGMA foreign_keys = ON",
	// WAL lets the CLI read while another process writes
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
}

// InitDB opens the database at dbPath, applies pragmas and runs migrations
func InitDB(ctx context.Context, dbPath string) (*sql.DB, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite benefits from a single writer connection, and an in-memory
	// database only exists on the connection that created it
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	closeOnErr := func(err error) (*sql.DB, error) {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing db", "error", closeErr)
		}
		return nil, err
	}

	for _, p := range pragmas {
		if dbPath == MemoryPath && p == "PRAGMA journal_mode = WAL" {
			continue
		}
		if _, err := db.ExecContext(ctx, p); err != nil {
			slog.Error("failed to apply pragma", "pragma", p, "error", err)
			return closeOnErr(err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return closeOnErr(fmt.Errorf("database ping failed: %w", err))
	}

	if err := runMigrations(ctx, db); err != nil {
		return closeOnErr(fmt.Errorf("failed to run migrations: %w", err))
	}

	return db, nil
}
