package tutorial

import (
	_ "embed"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/circles/internal/cli/styles"
)

//go:embed tutorial.md
var tutorialContent string

// TutorialCmd returns the tutorial command
func TutorialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutorial",
		Short: "Explain the circles workflow",
		Long: `Print a short guide to the circles workflow: capturing notes, moving them
through the circles, signing in and sharing.

Use --raw for the markdown source, e.g. to feed it to an AI agent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetBool("raw")
			return outputTutorial(cmd, raw)
		},
	}

	cmd.Flags().Bool("raw", false, "Print the markdown source")

	return cmd
}

func outputTutorial(cmd *cobra.Command, raw bool) error {
	content := tutorialContent
	if !raw {
		rendered, err := styles.RenderMarkdown(tutorialContent, styles.PlainOutput(cmd.OutOrStdout()))
		if err == nil {
			content = rendered
		}
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), content)
	return err
}
