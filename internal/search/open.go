package search

import (
	"context"
	"fmt"

	"shopapp/internal/config"
	"shopapp/internal/infra"

	"github.com/rs/zerolog/log"
)

// Open builds the index selected by cfg.SearchBackend and ensures its schema.
// The returned close func releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config, cb *infra.CircuitBreaker) (Index, func(context.Context) error, error) {
	switch cfg.SearchBackend {
	case "memory":
		log.Warn().Msg("search: using the in-memory index, documents are lost on restart")
		return NewMemoryIndex(), func(context.Context) error { return nil }, nil
	case "", "mongo":
		client, err := infra.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		index := NewMongoIndex(client.Database(cfg.MongoDatabase), cfg.SearchCollection, cb)
		if err := index.EnsureSchema(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("search schema: %w", err)
		}
		return index, client.Disconnect, nil
	default:
		return nil, nil, fmt.Errorf("unknown SEARCH_BACKEND %q", cfg.SearchBackend)
	}
}
