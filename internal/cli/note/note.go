package note

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli/styles"
	"github.com/thenoetrevino/circles/internal/models"
)

// NoteCmd returns the note parent command
func NoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes on the active board",
		Long: `Add notes, move them between the circles and reflect on them.

Notes start in the confused circle (WWTF), move through partial
understanding (WTF) and end up in the clear circle (CLARITY).`,
	}

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(ReflectCmd())
	cmd.AddCommand(PromptCmd())

	return cmd
}

// noteResult is a note and the board it sits on
type noteResult struct {
	BoardID string      `json:"boardId"`
	Note    models.Note `json:"note"`

	headline string
}

func (r noteResult) GetID() string { return r.Note.ID }

func (r noteResult) String() string {
	return fmt.Sprintf("%s\n%s %s",
		styles.SuccessStyle.Render(r.headline),
		styles.ZoneTag(r.Note.Zone),
		styles.RenderNote(r.Note))
}
