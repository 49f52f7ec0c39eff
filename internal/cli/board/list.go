package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
	"github.com/thenoetrevino/circles/internal/cli/styles"
	"github.com/thenoetrevino/circles/internal/syncer"
)

// ListCmd returns the board list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List boards in the current store",
		Long: `List the boards visible in the current store.

Signed out, these are the offline boards on this machine. Signed in, they
are the boards you own or have joined.

Examples:
  circles board list
  circles board list --json
  circles board list --quiet`,
		RunE: handler.Func(runList),
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

type boardRow struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Notes     int       `json:"notes"`
	Shared    bool      `json:"shared"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

type boardList struct {
	Mode   syncer.Mode `json:"mode"`
	Boards []boardRow  `json:"boards"`
}

func (l boardList) GetID() string {
	ids := make([]string, len(l.Boards))
	for i, b := range l.Boards {
		ids[i] = b.ID
	}
	return joinIDs(ids)
}

func (l boardList) String() string {
	if len(l.Boards) == 0 {
		return fmt.Sprintf("No %s boards yet. Create one with 'circles board new'.", l.Mode)
	}
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("%s boards", l.Mode)))
	for _, row := range l.Boards {
		marker := " "
		if row.Active {
			marker = "*"
		}
		line := fmt.Sprintf("\n%s %s  %s", marker, row.ID, styles.SubtitleStyle.Render(fmt.Sprintf("%d notes", row.Notes)))
		if row.Title != row.ID {
			line += "  " + row.Title
		}
		if row.Shared {
			line += "  " + styles.LabelStyle.Render("shared")
		}
		b.WriteString(line)
	}
	return b.String()
}

func runList(ctx context.Context, c *cli.CLI, _ *handler.Arguments) (any, error) {
	mode, err := c.App.Sync.Mode(ctx)
	if err != nil {
		return nil, err
	}
	metas, err := c.App.Sync.List(ctx)
	if err != nil {
		return nil, err
	}

	// The active board is the open one, else the one the store would resume
	active := ""
	if cur, err := c.App.Sync.Current(ctx); err == nil {
		active = cur.ID
	}
	if active == "" {
		active, _ = c.App.Sync.LastActive(ctx)
	}

	out := boardList{Mode: mode, Boards: make([]boardRow, 0, len(metas))}
	for _, m := range metas {
		out.Boards = append(out.Boards, boardRow{
			ID:        m.ID,
			Title:     m.Title,
			Notes:     len(m.Content),
			Shared:    m.Shared,
			Active:    m.ID == active,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return out, nil
}
