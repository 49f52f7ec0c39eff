package styles

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/session"
)

// BoardMarkdown writes a board as a markdown document: one section per zone,
// actions as task list items and reflections as numbered lists.
func BoardMarkdown(board models.Board) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", board.Title)

	for _, g := range session.ZoneSummary(board.Notes) {
		fmt.Fprintf(&b, "\n## %s\n\n", g.Zone.Label())
		if len(g.Notes) == 0 {
			b.WriteString("_No notes._\n")
			continue
		}
		for _, n := range g.Notes {
			fmt.Fprintf(&b, "- **%s** `%s`\n", n.Text, n.ID)
			for _, a := range n.NextActions {
				mark := " "
				if a.Completed {
					mark = "x"
				}
				fmt.Fprintf(&b, "  - [%s] %s\n", mark, a.Text)
			}
			if n.Reflection != nil && n.Reflection.HasContent() {
				for i, why := range n.Reflection.Answers() {
					if strings.TrimSpace(why) == "" {
						continue
					}
					fmt.Fprintf(&b, "  %d. %s\n", i+1, why)
				}
			}
		}
	}
	return b.String()
}

// RenderMarkdown renders markdown for the terminal. plain selects the
// colorless style used when output is not a terminal.
func RenderMarkdown(md string, plain bool) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(CardWidth)}
	if plain {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(md)
}

// PlainOutput reports whether w cannot show colors, e.g. a pipe or a file
func PlainOutput(w io.Writer) bool {
	return termenv.NewOutput(w).Profile == termenv.Ascii
}
