package board

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
	"github.com/thenoetrevino/circles/internal/cli/styles"
)

// ShowCmd returns the board show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active board",
		Long: `Show the active board's notes grouped by zone, with their actions.

Examples:
  circles board show
  circles board show --board quiet-otter --json
  circles board show --markdown
  circles board show --markdown --raw > board.md`,
		RunE: handler.Func(runShow),
	}

	cmd.Flags().Bool("markdown", false, "Render the board as a markdown document")
	cmd.Flags().Bool("raw", false, "With --markdown, print the markdown source")
	cli.AddBoardFlag(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

// markdownView prints a board as markdown, rendered unless raw
type markdownView struct {
	boardView
	raw   bool
	plain bool
}

func (v markdownView) String() string {
	md := styles.BoardMarkdown(v.Board)
	if v.raw {
		return md
	}
	out, err := styles.RenderMarkdown(md, v.plain)
	if err != nil {
		return md
	}
	return out
}

func runShow(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	b, err := c.ActiveBoard(ctx, args.GetCmd())
	if err != nil {
		return nil, err
	}
	view, err := newBoardView(ctx, c, b, "")
	if err != nil {
		return nil, err
	}
	if args.GetBool("markdown") {
		return markdownView{
			boardView: view,
			raw:       args.GetBool("raw"),
			plain:     styles.PlainOutput(args.GetCmd().OutOrStdout()),
		}, nil
	}
	return view, nil
}
