// cmd/reindex rebuilds the search index from the database and exits.
// Ctrl-C stops the rebuild; the index is then incomplete and the command
// must be run again.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopapp/internal/config"
	"shopapp/internal/infra"
	"shopapp/internal/repository"
	"shopapp/internal/search"
	"shopapp/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	index, closeIndex, err := search.Open(ctx, cfg, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open search index")
	}
	defer func() { _ = closeIndex(context.Background()) }()

	indexer := worker.NewMassIndexer(repository.NewShopRepository(db), index, cfg.ReindexWorkers, cfg.ReindexBatchSize)
	n, err := indexer.Run(ctx)
	if err != nil {
		log.Error().Err(err).Int64("indexed", n).Msg("reindex failed")
		stop()
		os.Exit(1)
	}
	log.Info().Int64("indexed", n).Msg("reindex done")
}
