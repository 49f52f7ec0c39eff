package board

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
)

// UseCmd returns the board use subcommand
func UseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <board-id>",
		Short: "Make a board the active board",
		Long: `Open a board and remember it as the active board. Later commands act on
it unless --board or $CIRCLES_BOARD says otherwise.

Examples:
  circles board use quiet-otter`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Func(runUse),
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runUse(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	b, err := c.App.Sync.Open(ctx, args.Args[0])
	if err != nil {
		return nil, err
	}
	return newBoardView(ctx, c, b, fmt.Sprintf("Now using %s", b.ID))
}
