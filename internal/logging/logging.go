package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// Options controls where and how much is logged
type Options struct {
	// Dir is the log directory; defaults to ~/.circles/logs
	Dir string
	// File is the log file name inside Dir
	File      string
	Level     string
	MaxSizeMB int
}

// Init installs a text slog handler writing to a size-rotated file and points
// the standard log package at the same writer. The returned closer flushes
// and closes the file.
func Init(opts Options) (io.Closer, error) {
	if opts.Dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		opts.Dir = filepath.Join(homeDir, ".circles", "logs")
	}
	if opts.File == "" {
		opts.File = "circles.log"
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, opts.File),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: 3,
		MaxAge:     28,
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	// The daemon and event client log through the standard log package
	log.SetOutput(writer)
	log.SetFlags(log.LstdFlags)

	return writer, nil
}

// ParseLevel maps a config string to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
