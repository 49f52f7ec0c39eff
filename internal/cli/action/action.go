package action

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
	"github.com/thenoetrevino/circles/internal/cli/styles"
	"github.com/thenoetrevino/circles/internal/models"
)

// ActionCmd returns the action parent command
func ActionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Manage next actions on a note",
	}

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(ToggleCmd())

	return cmd
}

// AddCmd returns the action add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <note-id> <text>",
		Short: "Add a next action to a note",
		Long: `Add a follow-up step to a note on the active board.

Examples:
  circles action add note-1718000000000-ab12cd "read the RFC"
  circles action add note-1718000000000-ab12cd pair with Sam --quiet`,
		Args: cobra.MinimumNArgs(2),
		RunE: handler.Func(runAdd),
	}

	cli.AddBoardFlag(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

// ToggleCmd returns the action toggle subcommand
func ToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <note-id> <action-id>",
		Short: "Mark an action done, or not done again",
		Long: `Flip the completed flag of a note's action.

Examples:
  circles action toggle note-1718000000000-ab12cd action-1718000000500-ef34gh`,
		Args: cobra.ExactArgs(2),
		RunE: handler.Func(runToggle),
	}

	cli.AddBoardFlag(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

type actionResult struct {
	BoardID string        `json:"boardId"`
	NoteID  string        `json:"noteId"`
	Action  models.Action `json:"action"`

	headline string
}

func (r actionResult) GetID() string { return r.Action.ID }

func (r actionResult) String() string {
	return styles.SuccessStyle.Render(r.headline) + "\n" + styles.RenderAction(r.Action)
}

func findAction(n models.Note, actionID string) (models.Action, error) {
	for _, a := range n.NextActions {
		if a.ID == actionID {
			return a, nil
		}
	}
	return models.Action{}, fmt.Errorf("%w: %s", cli.ErrActionNotFound, actionID)
}

func runAdd(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	noteID := args.Args[0]
	text, err := handler.JoinText(args.Args[1:], "action")
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

	actionID, err := c.App.Sync.AddAction(ctx, noteID, text)
	if err != nil {
		return nil, err
	}
	n, err := c.Note(ctx, noteID)
	if err != nil {
		return nil, err
	}
	a, err := findAction(n, actionID)
	if err != nil {
		return nil, err
	}
	return actionResult{BoardID: b.ID, NoteID: noteID, Action: a, headline: "Added action"}, nil
}

func runToggle(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	noteID, actionID := args.Args[0], args.Args[1]
	b, err := c.ActiveBoard(ctx, args.GetCmd())
	if err != nil {
		return nil, err
	}
	n, err := c.Note(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if _, err := findAction(n, actionID); err != nil {
		return nil, err
	}

	if _, err := c.App.Sync.ToggleAction(ctx, noteID, actionID); err != nil {
		return nil, err
	}
	n, err = c.Note(ctx, noteID)
	if err != nil {
		return nil, err
	}
	a, err := findAction(n, actionID)
	if err != nil {
		return nil, err
	}

	headline := "Marked done"
	if !a.Completed {
		headline = "Marked not done"
	}
	return actionResult{BoardID: b.ID, NoteID: noteID, Action: a, headline: headline}, nil
}
