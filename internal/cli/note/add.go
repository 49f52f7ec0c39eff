package note

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
)

// AddCmd returns the note add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a note to the confused circle",
		Long: `Add a note to the active board. New notes start in the confused circle.

Examples:
  circles note add "why does the cache miss on restart"
  circles note add --board quiet-otter borrow checker lifetimes --quiet`,
		Args: cobra.MinimumNArgs(1),
		RunE: handler.Func(runAdd),
	}

	cli.AddBoardFlag(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runAdd(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	text, err := handler.JoinText(args.Args, "note")
	if err != nil {
		return nil, err
	}
	b, err := c.ActiveBoard(ctx, args.GetCmd())
	if err != nil {
		return nil, err
	}
	id, err := c.App.Sync.AddNote(ctx, text)
	if err != nil {
		return nil, err
	}
	n, err := c.Note(ctx, id)
	if err != nil {
		return nil, err
	}
	return noteResult{BoardID: b.ID, Note: n, headline: fmt.Sprintf("Added note to %s", b.Title)}, nil
}
