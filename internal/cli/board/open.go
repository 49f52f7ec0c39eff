package board

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
	"github.com/thenoetrevino/circles/internal/cli/styles"
	"github.com/thenoetrevino/circles/internal/models"
)

// OpenCmd returns the board open subcommand
func OpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <link>",
		Short: "Open a shared board from its link",
		Long: `Open a board someone shared with you.

Signed in, you join the board: it shows up in 'circles board list' from then
on and becomes the active board. Signed out, the board is printed read-only;
sign in with 'circles auth login --join <link>' to join it.

Examples:
  circles board open https://circles.example/board/share/1f0c...
  circles board open 1f0c... --json`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Func(runOpen),
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

type openResult struct {
	Board  models.Board `json:"board"`
	Joined bool         `json:"joined"`
}

func (r openResult) GetID() string { return r.Board.ID }

func (r openResult) String() string {
	var headline string
	if r.Joined {
		headline = fmt.Sprintf("Joined %s; it is now your active board", r.Board.Title)
	} else {
		headline = "Read-only view. Sign in with --join to edit this board."
	}
	return styles.SuccessStyle.Render(headline) + "\n" + styles.RenderBoard(r.Board)
}

func runOpen(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	meta, joined, err := c.App.OpenShared(ctx, args.Args[0])
	if err != nil {
		return nil, err
	}
	return openResult{Board: meta.Board(), Joined: joined}, nil
}
