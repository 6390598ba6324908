package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tutor/internal/cli/formatter"
	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// tutorHuhTheme returns a huh theme using the formatter palette.
func tutorHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// planFormValues holds the raw strings edited by the plan request form.
type planFormValues struct {
	Goal     string
	Level    string
	Minutes  string
	Deadline string
}

func (v planFormValues) request() (domain.PlanRequest, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(v.Minutes))
	if err != nil {
		return domain.PlanRequest{}, fmt.Errorf("minutes must be a number, got %q", v.Minutes)
	}
	return domain.PlanRequest{
		Goal:          strings.TrimSpace(v.Goal),
		Level:         strings.TrimSpace(v.Level),
		MinutesPerDay: minutes,
		Deadline:      strings.TrimSpace(v.Deadline),
	}, nil
}

func validateGoal(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("tell me what you want to learn")
	}
	return nil
}

func validateMinutes(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < domain.MinMinutesPerDay || v > domain.MaxMinutesPerDay {
		return fmt.Errorf("enter minutes between %d and %d", domain.MinMinutesPerDay, domain.MaxMinutesPerDay)
	}
	return nil
}

// planRequestForm collects a plan request interactively.
func planRequestForm(v *planFormValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What do you want to learn?").
				Placeholder("Learn SQL").
				Value(&v.Goal).
				Validate(validateGoal),
			huh.NewSelect[string]().
				Title("Current level").
				Options(
					huh.NewOption("Beginner", "beginner"),
					huh.NewOption("Intermediate", "intermediate"),
					huh.NewOption("Advanced", "advanced"),
					huh.NewOption("Rather not say", ""),
				).
				Value(&v.Level),
			huh.NewInput().
				Title("Minutes per day").
				Placeholder("30").
				Value(&v.Minutes).
				Validate(validateMinutes),
			huh.NewInput().
				Title("Deadline").
				Description(`"in 3 weeks", "in 2 months" or YYYY-MM-DD`).
				Placeholder("in 4 weeks").
				Value(&v.Deadline),
		),
	).WithTheme(tutorHuhTheme()).WithShowHelp(false)
}
