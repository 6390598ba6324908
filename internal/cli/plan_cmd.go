package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alexanderramin/tutor/internal/cli/formatter"
	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/llm"
	"github.com/alexanderramin/tutor/internal/service"
	"github.com/spf13/cobra"
)

const (
	defaultMinutes  = 30
	defaultDeadline = "in 4 weeks"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate and manage study plans",
	}

	cmd.AddCommand(
		newPlanGenerateCmd(app),
		newPlanSaveCmd(app),
		newPlanListCmd(app),
		newPlanShowCmd(app),
		newPlanDeleteCmd(app),
	)

	return cmd
}

// planRequestFlags are shared by generate and save.
type planRequestFlags struct {
	goal     string
	level    string
	minutes  int
	deadline string
}

func (f *planRequestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.goal, "goal", "", "What you want to learn")
	cmd.Flags().StringVar(&f.level, "level", "", "Current level (beginner, intermediate, ...)")
	cmd.Flags().IntVar(&f.minutes, "minutes", defaultMinutes, "Minutes of study per day")
	cmd.Flags().StringVar(&f.deadline, "deadline", defaultDeadline, `Deadline, e.g. "in 3 weeks" or 2026-06-01`)
}

func (f *planRequestFlags) request() domain.PlanRequest {
	return domain.PlanRequest{Goal: f.goal, Level: f.level, MinutesPerDay: f.minutes, Deadline: f.deadline}
}

func newPlanGenerateCmd(app *App) *cobra.Command {
	var flags planRequestFlags
	var save, asJSON bool
	var name string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a plan from a learning goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req := flags.request()

			if req.Goal == "" {
				if !app.Interactive {
					return fmt.Errorf("--goal is required")
				}
				values := planFormValues{
					Level:    flags.level,
					Minutes:  strconv.Itoa(flags.minutes),
					Deadline: flags.deadline,
				}
				if err := planRequestForm(&values).Run(); err != nil {
					return err
				}
				var err error
				if req, err = values.request(); err != nil {
					return err
				}
			}
			if err := req.Validate(); err != nil {
				return err
			}

			stop := func() {}
			if app.Interactive && !asJSON {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Drafting your plan...")
			}

			if save {
				stored, err := app.Plans.GenerateAndSave(ctx, req, name)
				stop()
				if err != nil {
					return err
				}
				return writePlanResult(cmd.OutOrStdout(), asJSON, stored, func() string {
					return formatter.FormatStoredPlan(stored, app.today()) + "\n"
				})
			}

			plan, err := app.Plans.Generate(ctx, req)
			stop()
			if err != nil {
				return err
			}
			return writePlanResult(cmd.OutOrStdout(), asJSON, plan, func() string {
				return formatter.FormatPlan(plan, app.today())
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "Save the generated plan")
	cmd.Flags().StringVar(&name, "name", "", "Name for the saved plan (defaults to the goal)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func writePlanResult(w io.Writer, asJSON bool, v any, render func() string) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(w, render())
	return err
}

func newPlanSaveCmd(app *App) *cobra.Command {
	var flags planRequestFlags
	var file, name string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a plan from JSON (as printed by `plan generate --json`, fences allowed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := readPlanFile(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			stored, err := app.Plans.Save(cmd.Context(), service.SavePlanInput{
				Name:    name,
				Request: flags.request(),
				Plan:    *plan,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved plan #%d %s with %d tasks\n", stored.ID, stored.Name, len(stored.Tasks))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&file, "file", "-", "Plan JSON file, or - for stdin")
	cmd.Flags().StringVar(&name, "name", "", "Plan name (defaults to the goal)")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}

// readPlanFile accepts plain plan JSON or model output that wraps it in
// code fences or commentary.
func readPlanFile(stdin io.Reader, path string) (*domain.Plan, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening plan file: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	plan, err := llm.ExtractJSON[domain.Plan](string(data), domain.Plan.Validate)
	if err != nil {
		return nil, fmt.Errorf("decoding plan JSON: %w", err)
	}
	return &plan, nil
}

func newPlanListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Plans.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanList(plans))
			return nil
		},
	}
}

func newPlanShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show PLAN_ID",
		Short: "Show a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "plan ID")
			if err != nil {
				return err
			}
			plan, err := app.Plans.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStoredPlan(plan, app.today()))
			return nil
		},
	}
}

func newPlanDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete PLAN_ID",
		Short: "Delete a saved plan with its tasks and progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "plan ID")
			if err != nil {
				return err
			}
			if !yes && !promptYesNo(cmd.InOrStdin(), cmd.OutOrStdout(),
				fmt.Sprintf("Delete plan #%d and all its progress? [y/N] ", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			if err := app.Plans.Delete(context.WithoutCancel(cmd.Context()), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan #%d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
