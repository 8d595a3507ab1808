package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopapp/internal/config"
	"shopapp/internal/infra"
	"shopapp/internal/repository"
	"shopapp/internal/router"
	"shopapp/internal/search"
	"shopapp/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis backs the shop cache and the index-sync queue; the API runs without it.
	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, cache and index retries disabled")
		rdb = nil
	}

	searchCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	index, closeIndex, err := search.Open(ctx, cfg, searchCB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open search index")
	}
	defer func() { _ = closeIndex(context.Background()) }()

	if rdb != nil {
		worker.StartIndexRetryCron(ctx, worker.IndexRetryConfig{
			Queue:    worker.NewIndexSyncQueue(rdb),
			Shops:    repository.NewShopRepository(db),
			Index:    index,
			CB:       searchCB,
			RDB:      rdb,
			Interval: cfg.IndexRetryInterval,
		})
	}

	r := router.New(cfg, db, rdb, index, searchCB)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// reindex blocks the request until the rebuild is done
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("shopapp listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
