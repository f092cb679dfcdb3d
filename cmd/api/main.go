package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"donations/internal/adapter/cache"
	"donations/internal/adapter/repo"
	"donations/internal/domain"
	"donations/internal/http/handlers"
	httpapi "donations/internal/http/httpapi"
	"donations/internal/infra"
	"donations/internal/infra/geoip"
	"donations/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Delivery seen-set: Postgres when configured so replicas share it, else in-process.
	var store domain.DeliveryStore
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		deliveries := repo.NewDeliveryRepository(infra.NewSQLRunner(pool, logger))
		if err := deliveries.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare webhook_deliveries")
		}
		store = deliveries
		logger.Info().Msg("webhook dedup backed by postgres")
	} else {
		store = cache.NewDeliveryCache(cfg.WebhookDedupTTL)
		logger.Info().Msg("webhook dedup backed by memory")
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()
	var lookup middleware.CountryLookup
	if resolver.Available() {
		lookup = resolver.CountryCode
	}

	if !cfg.NotificationsEnabled() {
		logger.Warn().Msg("WEB3FORMS_KEY not set, donation notifications disabled")
	}

	app, err := handlers.NewApp(cfg, logger, handlers.Dependencies{Store: store})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build app")
	}

	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
