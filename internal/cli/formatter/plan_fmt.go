package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/tutor/internal/deadline"
	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/repository"
	"github.com/alexanderramin/tutor/internal/service"
)

const maxTitleWidth = 48

func milestoneList(milestones []string) string {
	var b strings.Builder
	for i, m := range milestones {
		fmt.Fprintf(&b, "%s %s\n", StyleDim.Render(fmt.Sprintf("%d.", i+1)), m)
	}
	return b.String()
}

func resourceCell(ref *string) string {
	if ref == nil {
		return Dim("--")
	}
	return StyleBlue.Render(Truncate(*ref, 40))
}

func totalMinutes(tasks []domain.Task) int {
	total := 0
	for _, t := range tasks {
		total += t.EstMinutes
	}
	return total
}

// FormatPlan renders a freshly generated plan. Due dates are shown relative
// to today.
func FormatPlan(p *domain.Plan, today time.Time) string {
	headers := []string{"#", "DUE", "TYPE", "MIN", "TITLE", "RESOURCE"}
	rows := make([][]string, 0, len(p.Tasks))
	for i, t := range p.Tasks {
		due, err := deadline.ParseISO(t.DueDate)
		dueCell := t.DueDate
		if err == nil {
			dueCell = t.DueDate + " " + Dim("("+RelativeDay(due, today)+")")
		}
		rows = append(rows, []string{
			StyleDim.Render(strconv.Itoa(i + 1)),
			dueCell,
			TaskTypeBadge(t.Type),
			strconv.Itoa(t.EstMinutes),
			Truncate(t.Title, maxTitleWidth),
			resourceCell(t.ResourceRef),
		})
	}

	var b strings.Builder
	b.WriteString(Header("Milestones") + "\n")
	b.WriteString(milestoneList(p.Milestones))
	b.WriteString("\n" + Header("Tasks") + "\n")
	b.WriteString(RenderTable(headers, rows))
	fmt.Fprintf(&b, "\n%s %s across %d tasks\n", Dim("Total:"), FormatMinutes(totalMinutes(p.Tasks)), len(p.Tasks))
	return b.String()
}

// FormatStoredPlan renders a persisted plan with task IDs.
func FormatStoredPlan(p *domain.StoredPlan, today time.Time) string {
	var meta strings.Builder
	fmt.Fprintf(&meta, "%s %s\n", Dim("Goal:    "), Bold(p.Goal))
	if p.Level != "" {
		fmt.Fprintf(&meta, "%s %s\n", Dim("Level:   "), p.Level)
	}
	fmt.Fprintf(&meta, "%s %s/day\n", Dim("Minutes: "), FormatMinutes(p.Minutes))
	if p.Deadline != "" {
		fmt.Fprintf(&meta, "%s %s\n", Dim("Deadline:"), p.Deadline)
	}
	fmt.Fprintf(&meta, "%s %s\n", Dim("Created: "), p.CreatedAt.Local().Format("Jan 2, 2006 15:04"))

	milestones := make([]string, len(p.Milestones))
	for i, m := range p.Milestones {
		milestones[i] = m.Text
	}

	var b strings.Builder
	b.WriteString(meta.String() + "\n")
	b.WriteString(Header("Milestones") + "\n")
	b.WriteString(milestoneList(milestones))
	b.WriteString("\n" + Header("Tasks") + "\n")
	b.WriteString(FormatTaskTable(p.Tasks, today))

	return RenderNamedBox(fmt.Sprintf("Plan #%d", p.ID), p.Name, strings.TrimRight(b.String(), "\n"))
}

// FormatTaskTable renders stored tasks as a table.
func FormatTaskTable(tasks []domain.StoredTask, today time.Time) string {
	headers := []string{"ID", "DUE", "TYPE", "MIN", "TITLE", "RESOURCE"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			StyleDim.Render(strconv.FormatInt(t.ID, 10)),
			deadline.FormatISO(t.DueDate) + " " + DueLabel(t.DueDate, today),
			TaskTypeBadge(t.Type),
			strconv.Itoa(t.EstMinutes),
			Truncate(t.Title, maxTitleWidth),
			resourceCell(t.ResourceRef),
		})
	}
	return RenderTable(headers, rows)
}

// FormatTaskList renders the today/upcoming view for a plan.
func FormatTaskList(scope domain.TaskScope, tasks []domain.StoredTask, today time.Time) string {
	if len(tasks) == 0 {
		return Dim("Nothing left to do. Nice work!") + "\n"
	}
	total := 0
	for _, t := range tasks {
		total += t.EstMinutes
	}
	body := FormatTaskTable(tasks, today) +
		fmt.Sprintf("\n%s %s", Dim("Estimated:"), FormatMinutes(total))
	return RenderBox(fmt.Sprintf("Tasks: %s", scope), body) + "\n"
}

// FormatPlanList renders the saved plan summaries.
func FormatPlanList(plans []repository.PlanSummary) string {
	if len(plans) == 0 {
		return Dim("No saved plans. Create one with `tutor plan generate --save`.") + "\n"
	}
	headers := []string{"ID", "NAME", "GOAL", "CREATED"}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{
			StyleDim.Render(strconv.FormatInt(p.ID, 10)),
			Bold(Truncate(p.Name, 32)),
			Truncate(p.Goal, maxTitleWidth),
			Dim(p.CreatedAt.Local().Format("Jan 2, 2006")),
		})
	}
	return RenderBox("Plans", RenderTable(headers, rows)) + "\n"
}

// FormatCompletion summarizes what completing a task changed.
func FormatCompletion(taskID int64, outcome domain.Outcome, res *service.CompletionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s task %d %s\n", StyleGreen.Render("Recorded"), taskID, OutcomePill(outcome))

	if res.CoachError != "" {
		fmt.Fprintf(&b, "%s %s\n", StyleYellow.Render("Coach unavailable:"), Dim(res.CoachError))
	}
	for _, t := range res.AddedTasks {
		fmt.Fprintf(&b, "%s #%d %s %s, due %s\n", StyleGreen.Render("+ Added"),
			t.ID, t.Title, Dim("("+FormatMinutes(t.EstMinutes)+")"), deadline.FormatISO(t.DueDate))
	}
	if res.RescheduledTasks > 0 {
		fmt.Fprintf(&b, "%s %d task(s)\n", StyleYellow.Render("↻ Rescheduled"), res.RescheduledTasks)
	}
	if res.SkippedActions > 0 {
		fmt.Fprintf(&b, "%s\n", Dim(fmt.Sprintf("%d coach action(s) could not be applied", res.SkippedActions)))
	}
	if len(res.Tips) > 0 {
		b.WriteString("\n" + Header("Tips") + "\n")
		for _, tip := range res.Tips {
			fmt.Fprintf(&b, "%s %s\n", StylePurple.Render("•"), tip)
		}
	}
	return b.String()
}

// FormatProgress renders completion and streak for a plan.
func FormatProgress(p *domain.PlanProgress) string {
	pct := 0.0
	if p.Total > 0 {
		pct = float64(p.Done) / float64(p.Total)
	}
	streak := Dim("no streak yet")
	if p.StreakDays > 0 {
		streak = StyleYellow.Render(fmt.Sprintf("🔥 %d day streak", p.StreakDays))
	}
	body := fmt.Sprintf("%s\n%d of %d tasks done\n%s",
		RenderProgress(pct, 24), p.Done, p.Total, streak)
	return RenderBox(fmt.Sprintf("Progress: plan #%d", p.PlanID), body) + "\n"
}

// FormatSession describes a study session.
func FormatSession(s *domain.StudySession, now time.Time) string {
	if s.EndedAt != nil {
		d := s.EndedAt.Sub(s.StartedAt).Round(time.Minute)
		return fmt.Sprintf("Session %s ended after %s\n", Bold(s.ID), FormatMinutes(int(d.Minutes())))
	}
	running := now.Sub(s.StartedAt).Round(time.Minute)
	return fmt.Sprintf("Session %s active for plan #%d %s\n", Bold(s.ID), s.PlanID,
		Dim("(running "+FormatMinutes(int(running.Minutes()))+")"))
}
