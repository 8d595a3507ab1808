// Package search maintains the full-text index of shops. The relational store
// stays the source of truth; the index only holds what is needed to match and
// filter, and hits are resolved back to shop ids.
package search

import (
	"context"
	"errors"
	"time"

	"shopapp/internal/model"
	"shopapp/internal/shopquery"
)

// ErrUnavailable wraps every failure of the underlying index, including an
// open circuit breaker.
var ErrUnavailable = errors.New("search index unavailable")

// ShopDocument is the indexed form of a shop.
type ShopDocument struct {
	ID          uint      `bson:"_id"`
	Name        string    `bson:"name"`
	InVacations bool      `bson:"inVacations"`
	CreatedAt   time.Time `bson:"createdAt"`
	NbProducts  int       `bson:"nbProducts"`
}

// DocumentFromShop builds the index document of a loaded shop.
func DocumentFromShop(s model.Shop) ShopDocument {
	return ShopDocument{
		ID:          s.ID,
		Name:        s.Name,
		InVacations: s.InVacations,
		CreatedAt:   s.CreatedAt.UTC(),
		NbProducts:  s.NbProducts(),
	}
}

// Index is the contract the shop service and the mass indexer depend on.
type Index interface {
	// EnsureSchema creates the text and filter indexes if missing.
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, docs ...ShopDocument) error
	Delete(ctx context.Context, id uint) error
	// Purge removes every document, ahead of a full rebuild.
	Purge(ctx context.Context) error
	// Search matches text against shop names, ANDed with f, best match first.
	Search(ctx context.Context, text string, f shopquery.Filter) ([]uint, error)
	Ping(ctx context.Context) error
}
