package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/account"
	"github.com/thenoetrevino/circles/internal/cli/action"
	"github.com/thenoetrevino/circles/internal/cli/board"
	"github.com/thenoetrevino/circles/internal/cli/note"
	"github.com/thenoetrevino/circles/internal/cli/tutorial"
	"github.com/thenoetrevino/circles/internal/cli/watch"
)

// NewRootCmd builds the circles command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "circles",
		Short: "circles - sort what you are learning into three circles",
		Long: `circles tracks what you are learning on a board of three circles:
confused (WWTF), partially understood (WTF) and clear (CLARITY).

Boards live offline on this machine until you sign in; then they sync to
your account and can be shared with a link.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(board.BoardCmd())
	rootCmd.AddCommand(note.NoteCmd())
	rootCmd.AddCommand(action.ActionCmd())
	rootCmd.AddCommand(account.AuthCmd())
	rootCmd.AddCommand(watch.WatchCmd())
	rootCmd.AddCommand(tutorial.TutorialCmd())

	return rootCmd
}

// Execute runs the CLI and returns the process exit code
func Execute(ctx context.Context) int {
	err := NewRootCmd().ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	// Command errors were already reported by the output formatter
	var exitErr *cli.CommandError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitUsage
	}
	return exitErr.Code
}
