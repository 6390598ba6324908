package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tutor/internal/deadline"
	"github.com/charmbracelet/lipgloss"
)

func boxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)
}

// RenderBox wraps content in a rounded-border box with an optional
// upper-cased title.
func RenderBox(title string, content string) string {
	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle().Render(titleRendered + "\n\n" + content)
	}
	return boxStyle().Render(content)
}

// RenderNamedBox is RenderBox for a fixed label followed by a user-supplied
// name. Only the label is upper-cased.
func RenderNamedBox(label, name, content string) string {
	titleRendered := StyleHeader.Render(strings.ToUpper(label) + " " + name)
	return boxStyle().Render(titleRendered + "\n\n" + content)
}

// RelativeDay describes due relative to today in whole calendar days.
func RelativeDay(due, today time.Time) string {
	days := deadline.DaysBetween(today, due)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days > -14:
		return fmt.Sprintf("%dd overdue", -days)
	default:
		return fmt.Sprintf("%dw overdue", -days/7)
	}
}

// DueLabel is RelativeDay with urgency coloring: overdue red, today yellow.
func DueLabel(due, today time.Time) string {
	text := RelativeDay(due, today)
	days := deadline.DaysBetween(today, due)
	switch {
	case days < 0:
		return StyleRed.Render(text)
	case days == 0:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// Truncate shortens s to at most n visible runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}
