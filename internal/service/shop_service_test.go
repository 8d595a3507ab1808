package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopapp/internal/dto"
	"shopapp/internal/model"
	"shopapp/internal/search"
	"shopapp/internal/service"
	"shopapp/internal/shopquery"
	"shopapp/internal/worker"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shopFixture struct {
	repo   *stubShopRepo
	index  *search.MemoryIndex
	syncer *recordingSyncer
	svc    service.ShopService
}

func newShopFixture(t *testing.T, reindexer service.Reindexer) *shopFixture {
	t.Helper()
	repo := newStubShopRepo()
	index := search.NewMemoryIndex()
	syncer := &recordingSyncer{}
	if reindexer == nil {
		reindexer = worker.NewMassIndexer(repo, index, 3, 2)
	}
	return &shopFixture{
		repo:   repo,
		index:  index,
		syncer: syncer,
		svc:    service.NewShopService(repo, index, reindexer, syncer, nil, time.Minute),
	}
}

func hours(day int, open, closeAt string) dto.OpeningHoursRequest {
	return dto.OpeningHoursRequest{Day: day, OpenAt: open, CloseAt: closeAt}
}

func boolPtr(b bool) *bool { return &b }

// ── Validation ───────────────────────────────────────────────────────────────

func TestValidateOpeningHours(t *testing.T) {
	h := func(day int, open, closeAt string) model.OpeningHoursShop {
		return model.OpeningHoursShop{Day: day, OpenAt: open, CloseAt: closeAt}
	}
	cases := []struct {
		name  string
		hours []model.OpeningHoursShop
		msg   string
	}{
		{"empty", nil, ""},
		{"two slots same day", []model.OpeningHoursShop{h(1, "09:00", "12:00"), h(1, "14:00", "18:00")}, ""},
		{"touching slots", []model.OpeningHoursShop{h(2, "09:00", "12:00"), h(2, "12:00", "13:00")}, ""},
		{"same times other day", []model.OpeningHoursShop{h(1, "09:00", "12:00"), h(2, "09:00", "12:00")}, ""},
		{"seconds accepted", []model.OpeningHoursShop{h(7, "08:30:00", "19:45:30")}, ""},
		{"day zero", []model.OpeningHoursShop{h(0, "09:00", "12:00")}, "day out of range"},
		{"day eight", []model.OpeningHoursShop{h(8, "09:00", "12:00")}, "day out of range"},
		{"open after close", []model.OpeningHoursShop{h(3, "18:00", "09:00")}, "openAt after closeAt"},
		{"open equals close", []model.OpeningHoursShop{h(3, "09:00", "09:00")}, "openAt after closeAt"},
		{"garbage time", []model.OpeningHoursShop{h(3, "nine", "10:00")}, "invalid time of day"},
		{"overlap", []model.OpeningHoursShop{h(1, "09:00", "12:00"), h(1, "11:00", "15:00")}, "overlapping hours"},
		{"contained", []model.OpeningHoursShop{h(4, "08:00", "20:00"), h(4, "10:00", "11:00")}, "overlapping hours"},
		{"duplicate", []model.OpeningHoursShop{h(5, "09:00", "12:00"), h(5, "09:00", "12:00")}, "overlapping hours"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.ValidateOpeningHours(tc.hours)
			if tc.msg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrValidation)
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

// ── Create / Get ─────────────────────────────────────────────────────────────

func TestCreate_PersistsAndIndexes(t *testing.T) {
	f := newShopFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, dto.CrearShopRequest{
		Name:         "Corner Bakery",
		CreatedAt:    "2023-05-10",
		OpeningHours: []dto.OpeningHoursRequest{hours(1, "09:00", "12:00"), hours(1, "14:00", "18:00")},
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "2023-05-10", resp.CreatedAt)
	require.Len(t, resp.OpeningHours, 2)
	assert.Equal(t, "09:00:00", resp.OpeningHours[0].OpenAt)
	assert.Equal(t, "18:00:00", resp.OpeningHours[1].CloseAt)

	doc, ok := f.index.Get(resp.ID)
	require.True(t, ok)
	assert.Equal(t, "Corner Bakery", doc.Name)
	assert.Empty(t, f.syncer.jobs)
}

func TestCreate_DefaultsCreatedAtToToday(t *testing.T) {
	f := newShopFixture(t, nil)

	resp, err := f.svc.Create(context.Background(), dto.CrearShopRequest{Name: "Kiosk"})
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format(shopquery.DateLayout), resp.CreatedAt)
	assert.Empty(t, resp.OpeningHours)
	assert.Equal(t, 0, resp.NbProducts)
}

func TestCreate_RejectsOverlappingHours(t *testing.T) {
	f := newShopFixture(t, nil)

	_, err := f.svc.Create(context.Background(), dto.CrearShopRequest{
		Name:         "Overlap",
		OpeningHours: []dto.OpeningHoursRequest{hours(1, "09:00", "12:00"), hours(1, "11:00", "15:00")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Empty(t, f.repo.shops, "nothing must be persisted")
	assert.Equal(t, 0, f.index.Len())
}

func TestCreate_RejectsBadDate(t *testing.T) {
	f := newShopFixture(t, nil)

	_, err := f.svc.Create(context.Background(), dto.CrearShopRequest{Name: "X", CreatedAt: "10/05/2023"})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCreate_StoreFailureIsPersistenceError(t *testing.T) {
	f := newShopFixture(t, nil)
	f.repo.err = errors.New("connection refused")

	_, err := f.svc.Create(context.Background(), dto.CrearShopRequest{Name: "X"})
	assert.ErrorIs(t, err, service.ErrPersistence)
}

func TestCreate_IndexFailureIsQueued(t *testing.T) {
	f := newShopFixture(t, nil)
	f.index.Fail = search.ErrUnavailable

	resp, err := f.svc.Create(context.Background(), dto.CrearShopRequest{Name: "Offline"})
	require.NoError(t, err, "store is authoritative, the request succeeds")
	require.Len(t, f.syncer.jobs, 1)
	assert.Equal(t, resp.ID, f.syncer.jobs[0].ShopID)
	assert.Equal(t, worker.IndexUpsert, f.syncer.jobs[0].Op)
	assert.NotEmpty(t, f.syncer.jobs[0].LastError)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newShopFixture(t, nil)

	_, err := f.svc.GetByID(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Contains(t, err.Error(), "42")
}

// ── Update / Delete ──────────────────────────────────────────────────────────

func TestUpdate_NotFound(t *testing.T) {
	f := newShopFixture(t, nil)

	_, err := f.svc.Update(context.Background(), dto.ActualizarShopRequest{ID: 9, Name: "Ghost"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdate_ReplacesEverything(t *testing.T) {
	f := newShopFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, dto.CrearShopRequest{
		Name:         "Old name",
		CreatedAt:    "2022-01-01",
		OpeningHours: []dto.OpeningHoursRequest{hours(1, "09:00", "12:00")},
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, dto.ActualizarShopRequest{
		ID:           created.ID,
		Name:         "New name",
		CreatedAt:    "2022-02-02",
		InVacations:  true,
		OpeningHours: []dto.OpeningHoursRequest{hours(2, "10:00", "11:00"), hours(3, "10:00", "11:00")},
	})
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)
	assert.Equal(t, "2022-02-02", updated.CreatedAt)
	assert.True(t, updated.InVacations)
	require.Len(t, updated.OpeningHours, 2)
	assert.Equal(t, 2, updated.OpeningHours[0].Day)

	doc, ok := f.index.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "New name", doc.Name)
	assert.True(t, doc.InVacations)
}

func TestUpdate_RevalidatesHours(t *testing.T) {
	f := newShopFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, dto.CrearShopRequest{Name: "Shop"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, dto.ActualizarShopRequest{
		ID:           created.ID,
		Name:         "Shop",
		OpeningHours: []dto.OpeningHoursRequest{hours(9, "10:00", "11:00")},
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestDelete(t *testing.T) {
	f := newShopFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, dto.CrearShopRequest{Name: "Short lived"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteByID(ctx, created.ID))
	_, ok := f.index.Get(created.ID)
	assert.False(t, ok)

	_, err = f.svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = f.svc.DeleteByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

// ── List ─────────────────────────────────────────────────────────────────────

func TestList_ComposesQuery(t *testing.T) {
	f := newShopFixture(t, nil)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := f.svc.Create(ctx, dto.CrearShopRequest{Name: name, CreatedAt: "2023-06-01"})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, dto.ShopFilter{
		Page:          0,
		Size:          2,
		SortBy:        "name",
		CreatedAfter:  "2023-01-01",
		CreatedBefore: "2023-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 2)
	assert.True(t, page.First)
	assert.False(t, page.Last)

	require.NotNil(t, f.repo.lastQuery)
	assert.Equal(t, shopquery.SortByName, f.repo.lastQuery.Sort)
	require.Len(t, f.repo.lastQuery.Filter, 1)
	assert.Equal(t, shopquery.OpBetween, f.repo.lastQuery.Filter[0].Op)
}

func TestList_EmptyIsNotAnError(t *testing.T) {
	f := newShopFixture(t, nil)

	page, err := f.svc.List(context.Background(), dto.ShopFilter{Size: 5, InVacations: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, page.Empty)
	assert.NotNil(t, page.Content)
}

func TestList_InvalidDate(t *testing.T) {
	f := newShopFixture(t, nil)

	_, err := f.svc.List(context.Background(), dto.ShopFilter{Size: 5, CreatedAfter: "yesterday"})
	assert.ErrorIs(t, err, service.ErrInvalidParameter)
}

// ── Search ───────────────────────────────────────────────────────────────────

func TestSearch_TextAndFilters(t *testing.T) {
	f := newShopFixture(t, nil)
	ctx := context.Background()

	bakery, err := f.svc.Create(ctx, dto.CrearShopRequest{Name: "Corner Bakery", CreatedAt: "2023-03-01", InVacations: true})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, dto.CrearShopRequest{Name: "Bakery", CreatedAt: "2023-03-01"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, dto.CrearShopRequest{Name: "Butcher", CreatedAt: "2023-03-01", InVacations: true})
	require.NoError(t, err)

	all, err := f.svc.Search(ctx, dto.ShopSearchFilter{Name: "bakery"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onVacation, err := f.svc.Search(ctx, dto.ShopSearchFilter{Name: "bakery", InVacations: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, onVacation, 1)
	assert.Equal(t, bakery.ID, onVacation[0].ID)

	// strict bounds: a shop created on the bound itself is excluded
	none, err := f.svc.Search(ctx, dto.ShopSearchFilter{Name: "bakery", CreatedAfter: "2023-03-01"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch_SkipsStaleHits(t *testing.T) {
	f := newShopFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, dto.CrearShopRequest{Name: "Gone shop"})
	require.NoError(t, err)
	delete(f.repo.shops, created.ID)

	result, err := f.svc.Search(ctx, dto.ShopSearchFilter{Name: "gone"})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestSearch_Errors(t *testing.T) {
	f := newShopFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Search(ctx, dto.ShopSearchFilter{Name: "  "})
	assert.ErrorIs(t, err, service.ErrInvalidParameter)

	_, err = f.svc.Search(ctx, dto.ShopSearchFilter{Name: "x", CreatedBefore: "2023-13-40"})
	assert.ErrorIs(t, err, service.ErrInvalidParameter)

	f.index.Fail = search.ErrUnavailable
	_, err = f.svc.Search(ctx, dto.ShopSearchFilter{Name: "x"})
	assert.ErrorIs(t, err, service.ErrSearchUnavailable)
}

// ── Projection ───────────────────────────────────────────────────────────────

func TestToShopDto_CountsDistinctCategories(t *testing.T) {
	food := model.Category{ID: 1, Name: "food"}
	drinks := model.Category{ID: 2, Name: "drinks"}
	bio := model.Category{ID: 3, Name: "bio"}

	shop := model.Shop{
		ID:        7,
		Name:      "Grocer",
		CreatedAt: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		Products: []model.Product{
			{ID: 1, Name: "bread", Price: decimal.RequireFromString("1.20"), Categories: []model.Category{food, bio}},
			{ID: 2, Name: "juice", Price: decimal.RequireFromString("2.50"), Categories: []model.Category{drinks, bio}},
			{ID: 3, Name: "bag", Price: decimal.Zero},
		},
	}

	got := service.ToShopDto(shop)
	assert.Equal(t, 3, got.NumberOfCategories)
	assert.Equal(t, 3, got.NbProducts)
	assert.Equal(t, "2023-01-02", got.CreatedAt)
	assert.Len(t, shop.Products[0].Categories, 2, "source must not be mutated")

	empty := service.ToShopDto(model.Shop{ID: 8})
	assert.Equal(t, 0, empty.NumberOfCategories)
}

// ── Reindex ──────────────────────────────────────────────────────────────────

func TestReindex_RebuildsIndex(t *testing.T) {
	f := newShopFixture(t, nil)
	ctx := context.Background()
	for _, name := range []string{"one", "two", "three", "four", "five"} {
		_, err := f.svc.Create(ctx, dto.CrearShopRequest{Name: name})
		require.NoError(t, err)
	}
	require.NoError(t, f.index.Purge(ctx))
	require.NoError(t, f.index.Upsert(ctx, search.ShopDocument{ID: 999, Name: "stale"}))

	require.NoError(t, f.svc.Reindex(ctx))
	assert.Equal(t, 5, f.index.Len())
	_, stale := f.index.Get(999)
	assert.False(t, stale)
}

func TestReindex_ErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind error
	}{
		{"interrupted", context.Canceled, service.ErrInterrupted},
		{"store failure", errors.Join(worker.ErrLoad, errors.New("db down")), service.ErrPersistence},
		{"index failure", search.ErrUnavailable, service.ErrSearchUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newShopFixture(t, stubReindexer{err: tc.err})
			assert.ErrorIs(t, f.svc.Reindex(context.Background()), tc.kind)
		})
	}
}

func TestReindex_CancelledContext(t *testing.T) {
	f := newShopFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, f.svc.Reindex(ctx), service.ErrInterrupted)
}
