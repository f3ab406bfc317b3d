package main

import (
	"context"
	"fmt"
	"os"

	"github.com/riskibarqy/prediction-league/internal/app"
	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/interfaces/admincli"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, "admin")
	defer func() { _ = logger.Sync() }()

	runner := admincli.NewRunner(func(ctx context.Context) (*app.Container, error) {
		return app.New(ctx, cfg, logger)
	}, os.Stdout)

	err = runner.App().Run(os.Args)
	if closeErr := runner.Close(); closeErr != nil {
		logger.Warn("close app", "error", closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(admincli.ExitCode(err))
	}
}
