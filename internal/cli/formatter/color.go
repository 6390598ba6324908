package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorAqua   = lipgloss.Color("#689d6a")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleAqua   = lipgloss.NewStyle().Foreground(ColorAqua)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

var taskTypeStyles = map[domain.TaskType]lipgloss.Style{
	domain.TaskLesson:   StyleBlue,
	domain.TaskVideo:    StylePurple,
	domain.TaskReading:  StyleAqua,
	domain.TaskPractice: StyleGreen,
	domain.TaskProject:  StyleYellow,
	domain.TaskQuiz:     StyleRed,
}

// TaskTypeBadge renders a task type as a colored lowercase label.
func TaskTypeBadge(t domain.TaskType) string {
	style, ok := taskTypeStyles[t]
	if !ok {
		return StyleDim.Render(string(t))
	}
	return style.Render(string(t))
}

// OutcomePill returns a colored indicator for a completion outcome.
func OutcomePill(o domain.Outcome) string {
	switch o {
	case domain.OutcomeDone:
		return StyleGreen.Render("✔ done")
	case domain.OutcomePartial:
		return StyleYellow.Render("◐ partial")
	case domain.OutcomeSkipped:
		return StyleDim.Render("⊘ skipped")
	default:
		return StyleDim.Render(string(o))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
