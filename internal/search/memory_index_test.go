package search

import (
	"context"
	"testing"
	"time"

	"shopapp/internal/shopquery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndexSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	jan := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, idx.Upsert(ctx,
		ShopDocument{ID: 1, Name: "Boulangerie du Port", CreatedAt: jan},
		ShopDocument{ID: 2, Name: "Boulangerie Centrale", CreatedAt: jun, InVacations: true},
		ShopDocument{ID: 3, Name: "Librairie", CreatedAt: jun},
	))

	ids, err := idx.Search(ctx, "boulangerie", nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, ids)

	ids, err = idx.Search(ctx, "boulangerie", shopquery.Filter{shopquery.Eq(shopquery.FieldInVacations, true)})
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, ids)

	ids, err = idx.Search(ctx, "boulangerie port", shopquery.Filter{shopquery.Lt(shopquery.FieldCreatedAt, jun)})
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)

	require.NoError(t, idx.Delete(ctx, 1))
	require.NoError(t, idx.Purge(ctx))
	assert.Equal(t, 0, idx.Len())
}
