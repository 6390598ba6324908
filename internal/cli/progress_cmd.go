package cli

import (
	"fmt"

	"github.com/alexanderramin/tutor/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress PLAN_ID",
		Short: "Show completion and streak for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseID(args[0], "plan ID")
			if err != nil {
				return err
			}
			p, err := app.Progress.PlanProgress(cmd.Context(), planID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProgress(p))
			return nil
		},
	}
}
