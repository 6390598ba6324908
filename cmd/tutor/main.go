package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alexanderramin/tutor/internal/api"
	"github.com/alexanderramin/tutor/internal/cli"
	"github.com/alexanderramin/tutor/internal/config"
	"github.com/alexanderramin/tutor/internal/db"
	"github.com/alexanderramin/tutor/internal/intelligence"
	"github.com/alexanderramin/tutor/internal/linkcheck"
	"github.com/alexanderramin/tutor/internal/llm"
	"github.com/alexanderramin/tutor/internal/repository"
	"github.com/alexanderramin/tutor/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	// Open database
	database, err := db.OpenDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	planRepo := repository.NewSQLitePlanRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	progressRepo := repository.NewSQLiteProgressRepo(database)
	sessionRepo := repository.NewSQLiteStudySessionRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire intelligence
	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LLM.LogCalls {
		observer = llm.NewSlogObserver(logger)
	}
	llmClient := llm.NewOllamaClient(cfg.LLM, observer)
	links := linkcheck.NewValidator(cfg.Links)
	planner := intelligence.NewPlanService(llmClient)
	coach := intelligence.NewCoachService(llmClient, links, cfg.Links.MaxConcurrency)

	// Wire services
	useCases := service.NewSlogUseCaseObserver(logger)
	services := api.Services{
		Plans: service.NewPlanService(planner, planRepo, uow, nil, useCases),
		Tasks: service.NewTaskService(service.TaskServiceDeps{
			Plans:    planRepo,
			Tasks:    taskRepo,
			Progress: progressRepo,
			Sessions: sessionRepo,
			Coach:    coach,
			UoW:      uow,
			Logger:   logger,
		}, useCases),
		Progress: service.NewProgressService(planRepo, taskRepo, progressRepo, nil),
		Sessions: service.NewStudySessionService(planRepo, sessionRepo, nil, useCases),
	}

	app := &cli.App{
		Plans:       services.Plans,
		Tasks:       services.Tasks,
		Progress:    services.Progress,
		Sessions:    services.Sessions,
		Interactive: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		Serve: func(ctx context.Context) error {
			return api.NewServer(cfg.Server, services, llmClient, logger).ListenAndServe(ctx)
		},
	}

	return cli.NewRootCmd(app).ExecuteContext(context.Background())
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
