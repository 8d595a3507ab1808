package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopapp/internal/dto"
	"shopapp/internal/model"
	"shopapp/internal/repository"
	"shopapp/internal/search"
	"shopapp/internal/shopquery"
	"shopapp/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ShopService defines the business operations on shops.
type ShopService interface {
	Create(ctx context.Context, req dto.CrearShopRequest) (*dto.ShopResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.ShopResponse, error)
	// Update is a full replace of an existing shop, validated like Create.
	Update(ctx context.Context, req dto.ActualizarShopRequest) (*dto.ShopResponse, error)
	DeleteByID(ctx context.Context, id uint) error
	List(ctx context.Context, filter dto.ShopFilter) (*dto.Page[dto.ShopDto], error)
	Search(ctx context.Context, filter dto.ShopSearchFilter) ([]dto.ShopDto, error)
	// Reindex rebuilds the search index and blocks until it is done.
	Reindex(ctx context.Context) error
	// Touch refreshes derived state (index document, cache) after a change
	// made outside the shop aggregate, e.g. a product attached to the shop.
	Touch(ctx context.Context, id uint)
}

// Reindexer rebuilds the whole search index.
type Reindexer interface {
	Run(ctx context.Context) (int64, error)
}

// IndexSyncer queues index writes that could not be applied inline.
type IndexSyncer interface {
	Enqueue(ctx context.Context, job worker.IndexJob) error
}

type shopService struct {
	repo      repository.ShopRepository
	index     search.Index
	reindexer Reindexer
	syncer    IndexSyncer
	rdb       *redis.Client
	cacheTTL  time.Duration
}

// NewShopService wires the shop service. rdb may be nil, in which case reads
// are not cached.
func NewShopService(
	repo repository.ShopRepository,
	index search.Index,
	reindexer Reindexer,
	syncer IndexSyncer,
	rdb *redis.Client,
	cacheTTL time.Duration,
) ShopService {
	return &shopService{
		repo:      repo,
		index:     index,
		reindexer: reindexer,
		syncer:    syncer,
		rdb:       rdb,
		cacheTTL:  cacheTTL,
	}
}

func (s *shopService) Create(ctx context.Context, req dto.CrearShopRequest) (*dto.ShopResponse, error) {
	shop, err := buildShop(0, req.Name, req.CreatedAt, req.InVacations, req.OpeningHours)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		log.Error().Err(err).Str("name", shop.Name).Msg("shop: create failed")
		return nil, newError(ErrPersistence, "could not save shop", err)
	}
	return s.reloadAndSync(ctx, shop.ID)
}

func (s *shopService) GetByID(ctx context.Context, id uint) (*dto.ShopResponse, error) {
	if cached := s.cacheGet(ctx, id); cached != nil {
		return cached, nil
	}
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	resp := mapShop(*shop)
	s.cacheSet(ctx, resp)
	return &resp, nil
}

func (s *shopService) Update(ctx context.Context, req dto.ActualizarShopRequest) (*dto.ShopResponse, error) {
	exists, err := s.repo.Exists(ctx, req.ID)
	if err != nil {
		return nil, newError(ErrPersistence, "could not load shop", err)
	}
	if !exists {
		return nil, notFound(req.ID)
	}

	shop, err := buildShop(req.ID, req.Name, req.CreatedAt, req.InVacations, req.OpeningHours)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, shop); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(req.ID)
		}
		log.Error().Err(err).Uint("shop_id", req.ID).Msg("shop: update failed")
		return nil, newError(ErrPersistence, "could not save shop", err)
	}
	s.cacheDel(ctx, req.ID)
	return s.reloadAndSync(ctx, req.ID)
}

func (s *shopService) DeleteByID(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(id)
		}
		log.Error().Err(err).Uint("shop_id", id).Msg("shop: delete failed")
		return newError(ErrPersistence, "could not delete shop", err)
	}
	s.cacheDel(ctx, id)
	s.syncIndex(ctx, id, nil)
	return nil
}

func (s *shopService) List(ctx context.Context, filter dto.ShopFilter) (*dto.Page[dto.ShopDto], error) {
	params, err := shopquery.ParseParams(filter.InVacations, filter.CreatedAfter, filter.CreatedBefore)
	if err != nil {
		return nil, newError(ErrInvalidParameter, err.Error(), err)
	}
	q := shopquery.NewQuery(params, filter.SortBy, filter.Page, filter.Size)

	shops, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, newError(ErrPersistence, "could not list shops", err)
	}
	content := make([]dto.ShopDto, 0, len(shops))
	for _, shop := range shops {
		content = append(content, ToShopDto(shop))
	}
	page := dto.NewPage(content, total, q.Page, q.Size)
	return &page, nil
}

func (s *shopService) Search(ctx context.Context, filter dto.ShopSearchFilter) ([]dto.ShopDto, error) {
	text := strings.TrimSpace(filter.Name)
	if text == "" {
		return nil, newError(ErrInvalidParameter, "name is required", nil)
	}
	params, err := shopquery.ParseParams(filter.InVacations, filter.CreatedAfter, filter.CreatedBefore)
	if err != nil {
		return nil, newError(ErrInvalidParameter, err.Error(), err)
	}

	ids, err := s.index.Search(ctx, text, params.SearchFilter())
	if err != nil {
		log.Warn().Err(err).Str("text", text).Msg("shop: search failed")
		return nil, newError(ErrSearchUnavailable, "search is currently unavailable", err)
	}

	shops, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, newError(ErrPersistence, "could not load search results", err)
	}
	byID := make(map[uint]model.Shop, len(shops))
	for _, shop := range shops {
		byID[shop.ID] = shop
	}
	result := make([]dto.ShopDto, 0, len(ids))
	for _, id := range ids {
		// hits for shops deleted since they were indexed are dropped
		if shop, ok := byID[id]; ok {
			result = append(result, ToShopDto(shop))
		}
	}
	return result, nil
}

func (s *shopService) Reindex(ctx context.Context) error {
	n, err := s.reindexer.Run(ctx)
	switch {
	case err == nil:
		log.Info().Int64("indexed", n).Msg("shop: reindex done")
		return nil
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newError(ErrInterrupted, "reindex interrupted, the search index may be incomplete: run reindex again", err)
	case errors.Is(err, worker.ErrLoad):
		return newError(ErrPersistence, "reindex failed while loading shops", err)
	default:
		return newError(ErrSearchUnavailable, "reindex failed while writing the search index", err)
	}
}

func (s *shopService) Touch(ctx context.Context, id uint) {
	s.cacheDel(ctx, id)
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Uint("shop_id", id).Msg("shop: touch could not load shop")
		return
	}
	s.syncIndex(ctx, id, shop)
}

// reloadAndSync reads back the committed shop, pushes it to the index and
// returns its entity view.
func (s *shopService) reloadAndSync(ctx context.Context, id uint) (*dto.ShopResponse, error) {
	saved, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, newError(ErrPersistence, "could not reload shop", err)
	}
	s.syncIndex(ctx, id, saved)
	resp := mapShop(*saved)
	return &resp, nil
}

// syncIndex applies the index write for a shop: upsert when shop is given,
// delete otherwise. A failed write is queued for the retry cron; the store
// stays authoritative either way.
func (s *shopService) syncIndex(ctx context.Context, id uint, shop *model.Shop) {
	if s.index == nil {
		return
	}
	job := worker.IndexJob{ShopID: id, Op: worker.IndexDelete}
	var err error
	if shop != nil {
		job.Op = worker.IndexUpsert
		err = s.index.Upsert(ctx, search.DocumentFromShop(*shop))
	} else {
		err = s.index.Delete(ctx, id)
	}
	if err == nil {
		return
	}

	log.Warn().Err(err).Uint("shop_id", id).Str("op", string(job.Op)).Msg("shop: index write failed, queued for retry")
	if s.syncer == nil {
		return
	}
	job.LastError = err.Error()
	if qErr := s.syncer.Enqueue(context.WithoutCancel(ctx), job); qErr != nil {
		log.Error().Err(qErr).Uint("shop_id", id).Msg("shop: could not queue index write")
	}
}

func (s *shopService) lookupError(id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(id)
	}
	return newError(ErrPersistence, "could not load shop", err)
}

func notFound(id uint) *Error {
	return newError(ErrNotFound, fmt.Sprintf("Shop with id %d not found", id), nil)
}

// buildShop converts request fields to a validated model.Shop.
func buildShop(id uint, name, createdAt string, inVacations bool, hours []dto.OpeningHoursRequest) (*model.Shop, error) {
	created := time.Now().UTC().Truncate(24 * time.Hour)
	if strings.TrimSpace(createdAt) != "" {
		t, err := time.Parse(shopquery.DateLayout, createdAt)
		if err != nil {
			return nil, validationError("createdAt must be a date formatted as YYYY-MM-DD")
		}
		created = t
	}

	shop := &model.Shop{
		ID:           id,
		Name:         strings.TrimSpace(name),
		CreatedAt:    created,
		InVacations:  inVacations,
		OpeningHours: make([]model.OpeningHoursShop, 0, len(hours)),
	}
	for _, h := range hours {
		shop.OpeningHours = append(shop.OpeningHours, model.OpeningHoursShop{
			ID:      h.ID,
			ShopID:  id,
			Day:     h.Day,
			OpenAt:  strings.TrimSpace(h.OpenAt),
			CloseAt: strings.TrimSpace(h.CloseAt),
		})
	}
	if err := ValidateOpeningHours(shop.OpeningHours); err != nil {
		return nil, err
	}
	normalizeOpeningHours(shop.OpeningHours)
	// new rows on create; Replace assigns fresh ids on update
	if id == 0 {
		for i := range shop.OpeningHours {
			shop.OpeningHours[i].ID = 0
		}
	}
	return shop, nil
}

// ── Read-through cache ───────────────────────────────────────────────────────

func shopCacheKey(id uint) string { return fmt.Sprintf("shop:%d", id) }

func (s *shopService) cacheGet(ctx context.Context, id uint) *dto.ShopResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, shopCacheKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var resp dto.ShopResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *shopService) cacheSet(ctx context.Context, resp dto.ShopResponse) {
	if s.rdb == nil {
		return
	}
	if b, err := json.Marshal(resp); err == nil {
		_ = s.rdb.Set(ctx, shopCacheKey(resp.ID), b, s.cacheTTL).Err()
	}
}

func (s *shopService) cacheDel(ctx context.Context, id uint) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, shopCacheKey(id)).Err(); err != nil {
		log.Warn().Err(err).Uint("shop_id", id).Msg("shop: cache invalidation failed")
	}
}
