package worker

// retry_cron.go
// Background goroutine that replays index writes queued in index:pending.
// Uses the circuit breaker to avoid hammering a downed index.

import (
	"context"
	"errors"
	"time"

	"shopapp/internal/infra"
	"shopapp/internal/model"
	"shopapp/internal/search"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	defaultRetryInterval = 30 * time.Second
	retryBatchSize       = 50
	MaxIndexRetries      = 5
)

// ShopFinder loads one shop aggregate.
type ShopFinder interface {
	FindByID(ctx context.Context, id uint) (*model.Shop, error)
}

// IndexRetryConfig holds all dependencies for the retry goroutine.
type IndexRetryConfig struct {
	Queue    *IndexSyncQueue
	Shops    ShopFinder
	Index    search.Index
	CB       *infra.CircuitBreaker
	RDB      *redis.Client
	Interval time.Duration
}

// StartIndexRetryCron launches the replay loop. It stops when ctx is done.
func StartIndexRetryCron(ctx context.Context, cfg IndexRetryConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("index_retry: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("index_retry: shutting down")
				return
			case <-ticker.C:
				processIndexRetries(ctx, cfg)
			}
		}
	}()
}

// processIndexRetries replays up to retryBatchSize jobs and returns how many
// were applied successfully. Jobs failing MaxIndexRetries times go to the DLQ.
func processIndexRetries(ctx context.Context, cfg IndexRetryConfig) int {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("index_retry: circuit breaker is open, skipping tick")
		return 0
	}

	// jobs requeued during this tick go to the back and wait for the next one
	pending, err := cfg.Queue.Len(ctx)
	if err != nil {
		log.Error().Err(err).Msg("index_retry: failed to read queue length")
		return 0
	}
	limit := int(min(pending, retryBatchSize))

	applied := 0
	for i := 0; i < limit; i++ {
		if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("index_retry: circuit breaker opened mid-batch, stopping")
			return applied
		}

		job, err := cfg.Queue.Pop(ctx)
		if err != nil {
			log.Error().Err(err).Msg("index_retry: failed to pop job")
			return applied
		}
		if job == nil {
			return applied
		}

		if err := applyIndexJob(ctx, cfg, *job); err != nil {
			job.Attempts++
			job.LastError = err.Error()
			if job.Attempts >= MaxIndexRetries {
				SendToDLQ(ctx, cfg.RDB, QueueIndexPending, job, err.Error(), job.Attempts)
				continue
			}
			if err := cfg.Queue.Enqueue(ctx, *job); err != nil {
				log.Error().Err(err).Uint("shop_id", job.ShopID).Msg("index_retry: failed to requeue job")
			}
			log.Warn().
				Uint("shop_id", job.ShopID).
				Str("op", string(job.Op)).
				Int("attempts", job.Attempts).
				Err(err).
				Msg("index_retry: replay failed")
			continue
		}
		applied++
	}
	return applied
}

func applyIndexJob(ctx context.Context, cfg IndexRetryConfig, job IndexJob) error {
	if job.Op == IndexDelete {
		return cfg.Index.Delete(ctx, job.ShopID)
	}
	shop, err := cfg.Shops.FindByID(ctx, job.ShopID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// deleted since the write was queued
		return cfg.Index.Delete(ctx, job.ShopID)
	}
	if err != nil {
		return err
	}
	return cfg.Index.Upsert(ctx, search.DocumentFromShop(*shop))
}
