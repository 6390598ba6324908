package cli

import (
	"fmt"

	"github.com/alexanderramin/tutor/internal/cli/formatter"
	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/service"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "List and complete plan tasks",
	}

	cmd.AddCommand(
		newTaskTodayCmd(app),
		newTaskCompleteCmd(app),
	)

	return cmd
}

func newTaskTodayCmd(app *App) *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "today PLAN_ID",
		Short: "Show what to study today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseID(args[0], "plan ID")
			if err != nil {
				return err
			}
			s := domain.TaskScope(scope)
			tasks, err := app.Tasks.Today(cmd.Context(), planID, s)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(s, tasks, app.today()))
			return nil
		},
	}

	cmd.Flags().Var(newEnumValue(string(domain.ScopeToday), &scope,
		string(domain.ScopeToday), string(domain.ScopeUpcoming), string(domain.ScopeAll)),
		"scope", "today|upcoming|all")

	return cmd
}

func newTaskCompleteCmd(app *App) *cobra.Command {
	var outcome, notes string
	var morePractice bool

	cmd := &cobra.Command{
		Use:   "complete TASK_ID",
		Short: "Record how a task went",
		Long: `Record a task outcome. Passing --confidence attaches a reflection
and asks the coach whether the plan should adapt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task ID")
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			in := service.CompleteTaskInput{
				Outcome: domain.Outcome(outcome),
				Notes:   notes,
			}
			if in.Rating, err = optionalInt(fs, "rating"); err != nil {
				return err
			}
			if in.SessionID, err = optionalString(fs, "session"); err != nil {
				return err
			}

			if fs.Changed("confidence") {
				confidence, err := fs.GetInt("confidence")
				if err != nil {
					return err
				}
				ref := &domain.Reflection{Confidence: confidence, WantMorePractice: morePractice}
				if ref.Blockers, err = optionalString(fs, "blockers"); err != nil {
					return err
				}
				if ref.TookMinutes, err = optionalInt(fs, "took"); err != nil {
					return err
				}
				in.Reflection = ref
			}

			stop := func() {}
			if app.Interactive && in.Reflection != nil {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Asking the coach...")
			}
			res, err := app.Tasks.Complete(cmd.Context(), taskID, in)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCompletion(taskID, in.Outcome, res))
			return nil
		},
	}

	cmd.Flags().Var(newEnumValue(string(domain.OutcomeDone), &outcome,
		string(domain.OutcomeDone), string(domain.OutcomePartial), string(domain.OutcomeSkipped)),
		"outcome", "done|partial|skipped")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().Int("rating", 0, "How useful the task was (1-5)")
	cmd.Flags().String("session", "", "Study session ID to attach")
	cmd.Flags().Int("confidence", 0, "Confidence after the task (1-5); enables the coach")
	cmd.Flags().String("blockers", "", "What got in the way")
	cmd.Flags().Int("took", 0, "Minutes the task actually took")
	cmd.Flags().BoolVar(&morePractice, "more-practice", false, "Ask for more practice on this topic")

	return cmd
}
