package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"donations/internal/adapter/repo"
	"donations/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadSweeperConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: db connection failed")
	}
	defer pool.Close()

	deliveries := repo.NewDeliveryRepository(infra.NewSQLRunner(pool, logger))
	if err := deliveries.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("sweeper: schema check failed")
	}

	logger.Info().Dur("interval", cfg.SweepInterval).Msg("sweeper started")
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	sweep(ctx, deliveries, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
			sweep(ctx, deliveries, logger)
		}
	}
}

func sweep(ctx context.Context, deliveries *repo.DeliveryRepositoryPG, logger infra.Logger) {
	removed, err := deliveries.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error().Err(err).Msg("sweeper: purge failed")
		}
		return
	}
	if removed > 0 {
		logger.Info().Int64("removed", removed).Msg("sweeper: expired deliveries purged")
	}
}
