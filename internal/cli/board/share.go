package board

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
)

// ShareCmd returns the board share subcommand
func ShareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Turn link sharing on or off",
		Long: `Turn link sharing on for the active board and print its link. Anyone with
the link can view the board; signed-in users who open it join the board and
keep access after sharing is turned off again.

Only the board's owner can change sharing. Offline and demo boards cannot
be shared.

Examples:
  circles board share
  circles board share --off`,
		RunE: handler.Func(runShare),
	}

	cmd.Flags().Bool("off", false, "Stop sharing the board")
	cli.AddBoardFlag(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

// LinkCmd returns the board link subcommand
func LinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print the active board's share link",
		Long: `Print the share link for the active board without changing sharing.

Examples:
  circles board link
  circles board link --board 1f0c... --quiet`,
		RunE: handler.Func(runLink),
	}

	cli.AddBoardFlag(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

type shareResult struct {
	BoardID string `json:"boardId"`
	Shared  bool   `json:"shared"`
	Link    string `json:"link"`
}

func (r shareResult) GetID() string { return r.Link }

func (r shareResult) String() string {
	if !r.Shared {
		return fmt.Sprintf("Stopped sharing %s. Users who already joined keep access.", r.BoardID)
	}
	return fmt.Sprintf("Sharing %s\nLink: %s", r.BoardID, r.Link)
}

func runShare(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	b, err := c.ActiveBoard(ctx, args.GetCmd())
	if err != nil {
		return nil, err
	}
	if err := requireShareable(ctx, c, b.ID); err != nil {
		return nil, err
	}

	shared := !args.GetBool("off")
	if err := c.App.Remote.SetShared(ctx, b.ID, shared); err != nil {
		return nil, err
	}
	return shareResult{BoardID: b.ID, Shared: shared, Link: c.App.ShareLink(b.ID)}, nil
}

func runLink(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	b, err := c.ActiveBoard(ctx, args.GetCmd())
	if err != nil {
		return nil, err
	}
	if err := requireShareable(ctx, c, b.ID); err != nil {
		return nil, err
	}
	return shareResult{BoardID: b.ID, Shared: b.Shared, Link: c.App.ShareLink(b.ID)}, nil
}
