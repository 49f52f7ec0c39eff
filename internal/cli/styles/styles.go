package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thenoetrevino/circles/internal/config"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/session"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	CardWidth = 72

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "Mode:", "Link:"
	SectionStyle  lipgloss.Style // For zone headings

	// Status styles
	DoneStyle    lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style

	zoneStyles = map[models.Zone]lipgloss.Style{}
)

func init() {
	Init(config.DefaultTheme())
}

// Init initializes all CLI styles with the given theme
func Init(theme config.Theme) {
	theme.ApplyDefaults()

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(0, 1).
		Width(CardWidth)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Accent))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Subtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Accent))

	SectionStyle = lipgloss.NewStyle().
		Bold(true).
		MarginTop(1)

	DoneStyle = lipgloss.NewStyle().
		Strikethrough(true).
		Foreground(lipgloss.Color(theme.Done))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Done))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Error))

	zoneStyles = map[models.Zone]lipgloss.Style{
		models.ZoneConfused: SectionStyle.Foreground(lipgloss.Color(theme.Confused)),
		models.ZonePartial:  SectionStyle.Foreground(lipgloss.Color(theme.Partial)),
		models.ZoneClear:    SectionStyle.Foreground(lipgloss.Color(theme.Clear)),
	}
}

// ═══════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════

// ZoneHeading renders a zone label in the zone's color
func ZoneHeading(z models.Zone, count int) string {
	style, ok := zoneStyles[z]
	if !ok {
		style = SectionStyle
	}
	return style.Render(fmt.Sprintf("%s (%d)", z.Label(), count))
}

// ZoneTag renders just the zone label in the zone's color
func ZoneTag(z models.Zone) string {
	style, ok := zoneStyles[z]
	if !ok {
		return z.Label()
	}
	return style.MarginTop(0).Render(z.Label())
}

// RenderAction renders a next action as a checkbox line
func RenderAction(a models.Action) string {
	if a.Completed {
		return "[x] " + DoneStyle.Render(a.Text) + " " + SubtitleStyle.Render(a.ID)
	}
	return "[ ] " + a.Text + " " + SubtitleStyle.Render(a.ID)
}

// RenderNote renders a note, its actions and whether it has a reflection
func RenderNote(n models.Note) string {
	var b strings.Builder
	b.WriteString("• " + n.Text + " " + SubtitleStyle.Render(n.ID))
	if n.Reflection != nil && n.Reflection.HasContent() {
		b.WriteString(" " + LabelStyle.Render("5w"))
	}
	for _, a := range n.NextActions {
		b.WriteString("\n    " + RenderAction(a))
	}
	return b.String()
}

// RenderBoard renders a board grouped by zone inside a card
func RenderBoard(board models.Board) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(board.Title))
	if board.Title != board.ID {
		b.WriteString(" " + SubtitleStyle.Render(board.ID))
	}
	if board.Shared {
		b.WriteString(" " + LabelStyle.Render("shared"))
	}

	for _, g := range session.ZoneSummary(board.Notes) {
		b.WriteString("\n" + ZoneHeading(g.Zone, len(g.Notes)))
		if len(g.Notes) == 0 {
			b.WriteString("\n" + SubtitleStyle.Render("  (empty)"))
			continue
		}
		for _, n := range g.Notes {
			b.WriteString("\n" + RenderNote(n))
		}
	}
	return RenderCard(b.String())
}

// RenderCard wraps content in a styled card border
func RenderCard(content string) string {
	return CardStyle.Render(content)
}
