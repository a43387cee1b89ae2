package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"research-agent/internal/di"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/env"
	"research-agent/internal/infrastructure/userinteraction"

	"github.com/google/uuid"
)

const queryPrompt = "What can I help you research? "

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	console := userinteraction.NewConsole()

	cfg, err := env.LoadConfig(env.NewEnvService())
	if err != nil {
		console.ShowError(ctx, err)
		return 1
	}

	query, err := console.AskQuery(ctx, queryPrompt)
	if err != nil {
		console.ShowError(ctx, err)
		return 1
	}

	container, err := di.NewContainer(cfg, query, console)
	if err != nil {
		console.ShowError(ctx, fmt.Errorf("initialization failed: %w", err))
		return 1
	}
	defer container.Close()

	log := container.Logger.WithFields(map[string]any{
		"run_id":   uuid.NewString(),
		"provider": cfg.Provider,
		"model":    cfg.Model,
	})
	log.Info("Run started")

	report, err := container.Research.Research(ctx, query)
	if err != nil {
		log.Error("Run failed", "error", err, "budget", errors.Is(err, entity.ErrBudgetExceeded))
		console.ShowError(ctx, err)
		return 1
	}

	if report.ParseErr != nil {
		log.Warn("Run finished with unparsed response", "iterations", report.Iterations)
		console.ShowParseFailure(ctx, report.Raw, report.ParseErr)
		return 0
	}

	log.Info("Run finished", "iterations", report.Iterations)
	console.ShowResult(ctx, report.Result)
	return 0
}
