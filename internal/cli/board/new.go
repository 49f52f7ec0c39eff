package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
	"github.com/thenoetrevino/circles/internal/models"
)

// NewCmd returns the board new subcommand
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a board and make it active",
		Long: `Create a board in the current store and make it the active board.

Offline boards are named after their title; a missing or taken title gets a
generated name. With --demo the board is a scratch board that is never
saved to the remote store and is left out of the merge on sign-in.

Examples:
  circles board new "Learning Rust"
  circles board new --quiet
  circles board new --demo`,
		RunE: handler.Func(runNew),
	}

	cmd.Flags().Bool("demo", false, "Create a scratch board that stays on this machine")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runNew(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	title := strings.TrimSpace(strings.Join(args.Args, " "))

	var (
		b   *models.Board
		err error
	)
	if args.GetBool("demo") {
		b, err = c.App.Sync.OpenDemo(ctx, title)
	} else {
		b, err = c.App.Sync.Create(ctx, title)
	}
	if err != nil {
		return nil, err
	}
	return newBoardView(ctx, c, b, fmt.Sprintf("Created board %s", b.ID))
}
