package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/app"
	"github.com/thenoetrevino/circles/internal/cli/styles"
	"github.com/thenoetrevino/circles/internal/config"
	"github.com/thenoetrevino/circles/internal/events"
	"github.com/thenoetrevino/circles/internal/logging"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/session"
)

// BoardEnvVar selects the board commands act on, like --board
const BoardEnvVar = "CIRCLES_BOARD"

const daemonConnectTimeout = 500 * time.Millisecond

type appKey struct{}

// WithApp returns a context carrying an already built App. Commands run
// under it use that App instead of building their own (used by tests).
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// CLI represents the CLI application context
type CLI struct {
	App *app.App // Application container with services

	ctx       context.Context
	owned     bool
	logCloser io.Closer
}

// NewCLI loads config, starts logging, tries the notification daemon and
// builds the App
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCloser, err := logging.Init(logging.Options{Level: cfg.LogLevel, MaxSizeMB: cfg.LogMaxSizeMB})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	styles.Init(cfg.Theme)

	// Try to connect to daemon (optional - silent fallback)
	var opts []app.Option
	if cfg.SocketPath != "" {
		client, err := events.NewClient(cfg.SocketPath)
		if err == nil {
			connectCtx, cancel := context.WithTimeout(ctx, daemonConnectTimeout)
			err = client.Connect(connectCtx)
			cancel()
			if err != nil {
				_ = client.Close()
			}
		}
		if err == nil {
			client.SetNotifyFunc(func(level, message string) {
				slog.Info("daemon connection", "level", level, "message", message)
			})
			opts = append(opts, app.WithEventPublisher(client))
		} else {
			daemonErr := events.ClassifyDaemonError(err)
			slog.Debug("continuing without live updates",
				"code", daemonErr.Code, "message", daemonErr.Message, "hint", daemonErr.Hint, "retryable", daemonErr.Retryable())
		}
	}

	application, err := app.New(ctx, cfg, opts...)
	if err != nil {
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, err
	}

	return &CLI{App: application, ctx: ctx, owned: true, logCloser: logCloser}, nil
}

// GetCLIFromContext returns a CLI around the App carried by ctx, or builds
// a new one
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if a, ok := ctx.Value(appKey{}).(*app.App); ok && a != nil {
		return &CLI{App: a, ctx: ctx}, nil
	}
	return NewCLI(ctx)
}

// Close flushes pending edits. An App the CLI built itself is shut down too.
func (c *CLI) Close() error {
	if !c.owned {
		return c.App.Sync.Flush(c.ctx)
	}
	err := c.App.Close()
	if c.logCloser != nil {
		if cerr := c.logCloser.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// CloseWithLog closes the CLI, logging instead of returning the error
func (c *CLI) CloseWithLog() {
	if err := c.Close(); err != nil {
		slog.Error("error closing CLI", "error", err)
	}
}

// ActiveBoard opens the board a command should act on: --board, then
// CIRCLES_BOARD, then the last active board
func (c *CLI) ActiveBoard(ctx context.Context, cmd *cobra.Command) (*models.Board, error) {
	id, _ := cmd.Flags().GetString("board")
	if id == "" {
		id = os.Getenv(BoardEnvVar)
	}
	if id != "" {
		return c.App.Sync.Open(ctx, id)
	}
	return c.App.Sync.Resume(ctx)
}

// AddBoardFlag adds the --board selector to a command
func AddBoardFlag(cmd *cobra.Command) {
	cmd.Flags().String("board", "", "Board ID (defaults to $"+BoardEnvVar+" or the last active board)")
}

// AddOutputFlags adds the agent-friendly output flags
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")
}

// Note returns a note on the active board
func (c *CLI) Note(ctx context.Context, noteID string) (models.Note, error) {
	board, err := c.App.Sync.Current(ctx)
	if err != nil {
		return models.Note{}, err
	}
	n, ok := session.FindNote(board.Notes, noteID)
	if !ok {
		return models.Note{}, fmt.Errorf("%w: %s", ErrNoteNotFound, noteID)
	}
	return n, nil
}
