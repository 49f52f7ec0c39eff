package note

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
)

// MoveCmd returns the note move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <note-id> <zone>",
		Short: "Move a note to another circle",
		Long: `Move a note between circles. Zones are confused, partial and clear
(wwtf, wtf and clarity work too).

Examples:
  circles note move note-1718000000000-ab12cd partial
  circles note move note-1718000000000-ab12cd clarity --json`,
		Args: cobra.ExactArgs(2),
		RunE: handler.Func(runMove),
	}

	cli.AddBoardFlag(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runMove(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	noteID := args.Args[0]
	zone, err := handler.ParseZone(args.Args[1])
	if err != nil {
		return nil, err
	}
	b, err := c.ActiveBoard(ctx, args.GetCmd())
	if err != nil {
		return nil, err
	}
	if _, err := c.Note(ctx, noteID); err != nil {
		return nil, err
	}

	moved, err := c.App.Sync.MoveNote(ctx, noteID, zone)
	if err != nil {
		return nil, err
	}
	n, err := c.Note(ctx, noteID)
	if err != nil {
		return nil, err
	}

	headline := fmt.Sprintf("Moved to %s", zone.Label())
	if !moved {
		headline = fmt.Sprintf("Already in %s", zone.Label())
	}
	return noteResult{BoardID: b.ID, Note: n, headline: headline}, nil
}
