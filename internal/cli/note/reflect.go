package note

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
	"github.com/thenoetrevino/circles/internal/cli/styles"
	"github.com/thenoetrevino/circles/internal/models"
)

// ReflectCmd returns the note reflect subcommand
func ReflectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reflect <note-id>",
		Short: "Record five-whys answers on a note",
		Long: `Record the answers of a five-whys reflection on a note. Answers you do
not pass are kept; pass an empty value to clear one.

Examples:
  circles note reflect note-1718000000000-ab12cd --why1 "tests are slow"
  circles note reflect note-1718000000000-ab12cd --why2 "no cache" --why3 ""`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Func(runReflect),
	}

	for i, name := range handler.WhyFlagNames() {
		cmd.Flags().String(name, "", fmt.Sprintf("Answer to why #%d", i+1))
	}
	cli.AddBoardFlag(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

// reflectionResult shows the stored answers
type reflectionResult struct {
	noteResult
}

func (r reflectionResult) String() string {
	var b strings.Builder
	b.WriteString(styles.SuccessStyle.Render(r.headline))
	b.WriteString("\n" + styles.TitleStyle.Render(r.Note.Text))
	if r.Note.Reflection == nil {
		return b.String()
	}
	for i, why := range r.Note.Reflection.Answers() {
		if strings.TrimSpace(why) == "" {
			why = styles.SubtitleStyle.Render("(no answer)")
		}
		fmt.Fprintf(&b, "\n%s %s", styles.LabelStyle.Render(fmt.Sprintf("Why %d:", i+1)), why)
	}
	return b.String()
}

func runReflect(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	noteID := args.Args[0]
	b, err := c.ActiveBoard(ctx, args.GetCmd())
	if err != nil {
		return nil, err
	}
	current, err := c.Note(ctx, noteID)
	if err != nil {
		return nil, err
	}

	answers, err := args.ParseFiveWhys(current.Reflection)
	if err != nil {
		return nil, err
	}
	if _, err := c.App.Sync.SaveReflection(ctx, noteID, answers); err != nil {
		return nil, err
	}
	n, err := c.Note(ctx, noteID)
	if err != nil {
		return nil, err
	}
	return reflectionResult{noteResult{BoardID: b.ID, Note: n, headline: "Saved reflection"}}, nil
}

// PromptCmd returns the note prompt subcommand
func PromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print a question to reflect on",
		Long: `Print a random insight prompt, a question to ask yourself while looking
at a confusing note.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.NewFormatter(cmd).Success(promptResult{Prompt: models.RandomPrompt()})
		},
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

type promptResult struct {
	Prompt string `json:"prompt"`
}

func (p promptResult) GetID() string  { return p.Prompt }
func (p promptResult) String() string { return p.Prompt }
