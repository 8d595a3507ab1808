package service

import (
	"context"
	"fmt"
	"strings"

	"shopapp/internal/dto"
	"shopapp/internal/model"
	"shopapp/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService defines the business logic contract for products.
type ProductService interface {
	Create(ctx context.Context, req dto.CrearProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.Page[dto.ProductResponse], error)
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	shops      repository.ShopRepository
	shopSvc    ShopService
}

// NewProductService wires the product service. shopSvc is notified when a
// product is attached to a shop so its cached view and index document follow.
func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	shops repository.ShopRepository,
	shopSvc ShopService,
) ProductService {
	return &productService{repo: repo, categories: categories, shops: shops, shopSvc: shopSvc}
}

func mapProduct(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		ShopID:     p.ShopID,
		Categories: mapCategories(p.Categories),
	}
}

func (s *productService) Create(ctx context.Context, req dto.CrearProductRequest) (*dto.ProductResponse, error) {
	if req.Price.LessThan(decimal.Zero) {
		return nil, validationError("price must not be negative")
	}

	if req.ShopID != nil {
		exists, err := s.shops.Exists(ctx, *req.ShopID)
		if err != nil {
			return nil, newError(ErrPersistence, "could not load shop", err)
		}
		if !exists {
			return nil, notFound(*req.ShopID)
		}
	}

	ids := uniqueIDs(req.CategoryIDs)
	cats, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, newError(ErrPersistence, "could not load categories", err)
	}
	if len(cats) != len(ids) {
		return nil, newError(ErrNotFound, fmt.Sprintf("unknown category in %v", ids), nil)
	}

	p := &model.Product{
		ShopID:     req.ShopID,
		Name:       strings.TrimSpace(req.Name),
		Price:      req.Price.Round(2),
		Categories: cats,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, newError(ErrPersistence, "could not save product", err)
	}

	saved, err := s.repo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, newError(ErrPersistence, "could not reload product", err)
	}
	if saved.ShopID != nil && s.shopSvc != nil {
		s.shopSvc.Touch(ctx, *saved.ShopID)
	}
	resp := mapProduct(*saved)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.Page[dto.ProductResponse], error) {
	if filter.Size <= 0 {
		filter.Size = 20
	}
	if filter.Page < 0 {
		filter.Page = 0
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, newError(ErrPersistence, "could not list products", err)
	}
	content := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		content = append(content, mapProduct(p))
	}
	page := dto.NewPage(content, total, filter.Page, filter.Size)
	return &page, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
