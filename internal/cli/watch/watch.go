package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/styles"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/syncer"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the active board and print it when it changes",
		Long: `Print the active board, then print it again each time it changes
somewhere else: another circles process editing the offline snapshot, or
another collaborator editing a remote board. Stops on Ctrl-C.

With --json each change is one JSON object per line.

Examples:
  circles watch
  circles watch --board 1f0c... --json`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().Bool("json", false, "Print one JSON object per change")
	cli.AddBoardFlag(cmd)

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	formatter := cli.NewFormatter(cmd)
	c, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	defer c.CloseWithLog()

	b, err := c.ActiveBoard(ctx, cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if err := Follow(ctx, c, *b, NewPrinter(cmd.OutOrStdout(), jsonOutput)); err != nil {
		return formatter.Fail(err)
	}
	return nil
}

// Change is one printed state of the followed board
type Change struct {
	BoardID string        `json:"boardId"`
	Title   string        `json:"title"`
	Notes   []models.Note `json:"notes"`
	Source  string        `json:"source"`
	At      time.Time     `json:"at"`
}

// Printer writes changes as they arrive
type Printer func(Change) error

// NewPrinter prints changes as rendered boards, or as JSON lines
func NewPrinter(w io.Writer, jsonOutput bool) Printer {
	if jsonOutput {
		enc := json.NewEncoder(w)
		return func(ch Change) error { return enc.Encode(ch) }
	}
	return func(ch Change) error {
		_, err := fmt.Fprintf(w, "%s %s\n%s\n",
			styles.SubtitleStyle.Render(ch.At.Format(time.TimeOnly)),
			styles.SubtitleStyle.Render(ch.Source),
			styles.RenderBoard(models.Board{ID: ch.BoardID, Title: ch.Title, Notes: ch.Notes}))
		return err
	}
}

// Follow prints board, then every change to it until ctx is done. Offline
// boards are re-read when the snapshot file changes; remote boards change
// through the sync controller's updates.
func Follow(ctx context.Context, c *cli.CLI, board models.Board, emit Printer) error {
	if err := emit(Change{BoardID: board.ID, Title: board.Title, Notes: board.Notes, Source: "opened", At: time.Now()}); err != nil {
		return err
	}

	mode, err := c.App.Sync.Mode(ctx)
	if err != nil {
		return err
	}
	if mode == syncer.ModeLocal {
		return followLocal(ctx, c, board, emit)
	}
	return followRemote(ctx, c, board, emit)
}

func followLocal(ctx context.Context, c *cli.CLI, board models.Board, emit Printer) error {
	changes, err := c.App.WatchLocal(ctx)
	if err != nil {
		return err
	}
	last := board.Notes
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			b, err := c.App.Sync.Open(ctx, board.ID)
			if err != nil {
				return err
			}
			if cmp.Equal(last, b.Notes, cmpopts.EquateEmpty()) {
				continue
			}
			last = b.Notes
			if err := emit(Change{BoardID: b.ID, Title: b.Title, Notes: b.Notes, Source: "snapshot", At: time.Now()}); err != nil {
				return err
			}
		}
	}
}

func followRemote(ctx context.Context, c *cli.CLI, board models.Board, emit Printer) error {
	updates := c.App.Sync.Updates()
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if u.BoardID != board.ID {
				continue
			}
			switch u.Kind {
			case syncer.UpdateNotesReplaced:
				if err := emit(Change{BoardID: board.ID, Title: board.Title, Notes: u.Notes, Source: "remote", At: u.At}); err != nil {
					return err
				}
			case syncer.UpdateMessage:
				fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render(u.Message))
			}
		}
	}
}
