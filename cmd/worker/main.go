package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/prediction-league/internal/app"
	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/notify"
	"github.com/riskibarqy/prediction-league/internal/observability"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := app.NewLogger(cfg, "worker")
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("shutdown uptrace", "error", err)
		}
	}()

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	go func() {
		if err := notify.RunLogSubscriber(ctx, container.PubSub, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("week scored subscriber stopped", "error", err)
		}
	}()

	logger.Info("autoscore worker starting", "interval", cfg.AutoScoreInterval.String(), "fixture_api", cfg.FixtureAPI.Enabled)
	runLoop(ctx, container.AutoScore, cfg.AutoScoreInterval, logger)
	logger.Info("autoscore worker stopped")
}

// runLoop ticks once on start and then every interval until ctx is done.
// Ticks never overlap: a slow tick delays the next one.
func runLoop(ctx context.Context, svc *usecase.AutoScoreService, interval time.Duration, logger *logging.Logger) {
	inv := usecase.ScheduledTrusted("worker")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := svc.Tick(ctx, inv)
		if err != nil {
			logger.ErrorContext(ctx, "autoscore tick failed", "run_id", result.RunID, "week", result.Week, "error", err)
		} else {
			logger.InfoContext(ctx, "autoscore tick done",
				"run_id", result.RunID,
				"week", result.Week,
				"results_set", result.ResultsSet,
				"week_scored", result.WeekScored,
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
