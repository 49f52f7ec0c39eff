package board

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/styles"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/syncer"
	"github.com/thenoetrevino/circles/internal/types"
)

// BoardCmd returns the board parent command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage boards",
		Long:  "List, create, open, show and share boards.",
	}

	cmd.AddCommand(ListCmd())
	cmd.AddCommand(NewCmd())
	cmd.AddCommand(UseCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(ShareCmd())
	cmd.AddCommand(LinkCmd())
	cmd.AddCommand(OpenCmd())

	return cmd
}

// boardView is a board plus the store it came from
type boardView struct {
	models.Board
	Mode syncer.Mode `json:"mode"`

	headline string
}

func (v boardView) String() string {
	out := styles.RenderBoard(v.Board)
	if v.headline != "" {
		out = styles.SuccessStyle.Render(v.headline) + "\n" + out
	}
	return out
}

func newBoardView(ctx context.Context, c *cli.CLI, b *models.Board, headline string) (boardView, error) {
	mode, err := c.App.Sync.Mode(ctx)
	if err != nil {
		return boardView{}, err
	}
	return boardView{Board: *b, Mode: mode, headline: headline}, nil
}

// requireShareable fails unless the board lives in the remote store
func requireShareable(ctx context.Context, c *cli.CLI, boardID string) error {
	mode, err := c.App.Sync.Mode(ctx)
	if err != nil {
		return err
	}
	if mode != syncer.ModeRemote || types.IsDemoBoard(boardID) {
		return cli.ErrRemoteOnly
	}
	return nil
}

func joinIDs(ids []string) string {
	return strings.Join(ids, "\n")
}
