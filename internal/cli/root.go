package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/tutor/internal/deadline"
	"github.com/alexanderramin/tutor/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Plans    service.PlanService
	Tasks    service.TaskService
	Progress service.ProgressService
	Sessions service.StudySessionService

	// Serve runs the HTTP API until ctx is cancelled. Nil disables `serve`.
	Serve func(ctx context.Context) error

	// Interactive enables huh forms and spinners.
	Interactive bool

	// Now defaults to time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) today() time.Time {
	return deadline.Date(a.now())
}

// NewRootCmd creates the top-level "tutor" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tutor",
		Short:         "Study-plan assistant backed by a local model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCmd(app),
		newTaskCmd(app),
		newProgressCmd(app),
		newSessionCmd(app),
		newServeCmd(app),
	)

	return root
}
