package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/tutor/internal/cli/formatter"
	"github.com/alexanderramin/tutor/internal/repository"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Track focused study sessions",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "start PLAN_ID",
			Short: "Start (or resume) a study session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				planID, err := parseID(args[0], "plan ID")
				if err != nil {
					return err
				}
				s, err := app.Sessions.Start(cmd.Context(), planID)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSession(s, app.now()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "end SESSION_ID",
			Short: "End a study session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := app.Sessions.End(cmd.Context(), args[0])
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("session %s is not active", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSession(s, app.now()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "active PLAN_ID",
			Short: "Show the open session for a plan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				planID, err := parseID(args[0], "plan ID")
				if err != nil {
					return err
				}
				s, err := app.Sessions.Active(cmd.Context(), planID)
				if errors.Is(err, repository.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No active session."))
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSession(s, app.now()))
				return nil
			},
		},
	)

	return cmd
}
