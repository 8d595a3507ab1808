package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"shopapp/internal/model"
	"shopapp/internal/search"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultReindexWorkers   = 7
	DefaultReindexBatchSize = 100
)

// ErrLoad marks failures reading shops from the relational store.
var ErrLoad = errors.New("loading shops")

// ShopLoader is the part of the shop repository the mass indexer reads from.
type ShopLoader interface {
	ListIDsAfter(ctx context.Context, afterID uint, limit int) ([]uint, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Shop, error)
}

// MassIndexer rebuilds the search index from the store. One goroutine pages
// through shop ids; a bounded pool of loaders hydrates each batch and writes
// it to the index.
type MassIndexer struct {
	loader    ShopLoader
	index     search.Index
	workers   int
	batchSize int
}

func NewMassIndexer(loader ShopLoader, index search.Index, workers, batchSize int) *MassIndexer {
	if workers <= 0 {
		workers = DefaultReindexWorkers
	}
	if batchSize <= 0 {
		batchSize = DefaultReindexBatchSize
	}
	return &MassIndexer{loader: loader, index: index, workers: workers, batchSize: batchSize}
}

// Run purges the index and blocks until every shop has been re-indexed.
// On cancellation ctx.Err() is returned and the index is left partially
// rebuilt. Returns the number of documents written.
func (m *MassIndexer) Run(ctx context.Context) (int64, error) {
	start := time.Now()
	if err := m.index.Purge(ctx); err != nil {
		return 0, err
	}

	var indexed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan []uint)

	g.Go(func() error {
		defer close(batches)
		var after uint
		for {
			ids, err := m.loader.ListIDsAfter(gctx, after, m.batchSize)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrLoad, err)
			}
			if len(ids) == 0 {
				return nil
			}
			select {
			case batches <- ids:
			case <-gctx.Done():
				return gctx.Err()
			}
			after = ids[len(ids)-1]
		}
	})

	for w := 0; w < m.workers; w++ {
		w := w
		g.Go(func() error {
			for ids := range batches {
				shops, err := m.loader.FindByIDs(gctx, ids)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrLoad, err)
				}
				docs := make([]search.ShopDocument, 0, len(shops))
				for _, s := range shops {
					docs = append(docs, search.DocumentFromShop(s))
				}
				if err := m.index.Upsert(gctx, docs...); err != nil {
					return err
				}
				indexed.Add(int64(len(docs)))
				log.Debug().Int("worker", w).Int("batch", len(docs)).Msg("reindex: batch written")
			}
			return nil
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		log.Warn().Int64("indexed", indexed.Load()).Msg("reindex: interrupted")
		return indexed.Load(), ctx.Err()
	}
	if err != nil {
		return indexed.Load(), err
	}
	log.Info().
		Int64("indexed", indexed.Load()).
		Int("workers", m.workers).
		Dur("took", time.Since(start)).
		Msg("reindex: completed")
	return indexed.Load(), nil
}
