package service_test

import (
	"context"
	"sort"
	"sync"

	"shopapp/internal/model"
	"shopapp/internal/shopquery"
	"shopapp/internal/worker"

	"gorm.io/gorm"
)

// ── In-memory ShopRepository stub ────────────────────────────────────────────

type stubShopRepo struct {
	mu     sync.Mutex
	shops  map[uint]model.Shop
	nextID uint

	lastQuery *shopquery.Query
	err       error
}

func newStubShopRepo() *stubShopRepo {
	return &stubShopRepo{shops: make(map[uint]model.Shop), nextID: 1}
}

func (r *stubShopRepo) Create(_ context.Context, s *model.Shop) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID
	r.nextID++
	r.shops[s.ID] = r.withHourIDs(*s)
	return nil
}

func (r *stubShopRepo) withHourIDs(s model.Shop) model.Shop {
	hours := make([]model.OpeningHoursShop, len(s.OpeningHours))
	for i, h := range s.OpeningHours {
		h.ID = uint(i + 1)
		h.ShopID = s.ID
		hours[i] = h
	}
	s.OpeningHours = hours
	return s
}

func (r *stubShopRepo) FindByID(_ context.Context, id uint) (*model.Shop, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shops[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *stubShopRepo) Exists(_ context.Context, id uint) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.shops[id]
	return ok, nil
}

func (r *stubShopRepo) Replace(_ context.Context, s *model.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.shops[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	next := r.withHourIDs(*s)
	next.Products = old.Products
	r.shops[s.ID] = next
	return nil
}

func (r *stubShopRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shops[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.shops, id)
	return nil
}

func (r *stubShopRepo) List(_ context.Context, q shopquery.Query) ([]model.Shop, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = &q
	all := r.sorted()
	total := int64(len(all))
	start := q.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *stubShopRepo) ListIDsAfter(_ context.Context, afterID uint, limit int) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, 0, limit)
	for _, s := range r.sorted() {
		if s.ID > afterID && len(ids) < limit {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

func (r *stubShopRepo) FindByIDs(_ context.Context, ids []uint) ([]model.Shop, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Shop, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.shops[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubShopRepo) sorted() []model.Shop {
	all := make([]model.Shop, 0, len(r.shops))
	for _, s := range r.shops {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// ── Index sync recorder ──────────────────────────────────────────────────────

type recordingSyncer struct {
	mu   sync.Mutex
	jobs []worker.IndexJob
}

func (s *recordingSyncer) Enqueue(_ context.Context, job worker.IndexJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

// ── Reindexer stub ───────────────────────────────────────────────────────────

type stubReindexer struct {
	n   int64
	err error
}

func (r stubReindexer) Run(context.Context) (int64, error) { return r.n, r.err }

// ── In-memory CategoryRepository stub ────────────────────────────────────────

type stubCategoryRepo struct {
	cats   map[uint]model.Category
	nextID uint
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{cats: make(map[uint]model.Category), nextID: 1}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category) error {
	c.ID = r.nextID
	r.nextID++
	r.cats[c.ID] = *c
	return nil
}

func (r *stubCategoryRepo) List(context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(r.cats))
	for _, c := range r.cats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range r.cats {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) FindByIDs(_ context.Context, ids []uint) ([]model.Category, error) {
	out := make([]model.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.cats[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
