package service

import (
	"context"
	"errors"
	"strings"

	"shopapp/internal/dto"
	"shopapp/internal/model"
	"shopapp/internal/repository"

	"gorm.io/gorm"
)

// CategoryService defines business operations for product categories.
type CategoryService interface {
	Create(ctx context.Context, req dto.CrearCategoryRequest) (dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

// mapCategory converts a model to a DTO response.
func mapCategory(c model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{ID: c.ID, Name: c.Name}
}

func mapCategories(list []model.Category) []dto.CategoryResponse {
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, mapCategory(c))
	}
	return out
}

func (s *categoryService) Create(ctx context.Context, req dto.CrearCategoryRequest) (dto.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)

	// Check for duplicate name
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CategoryResponse{}, newError(ErrPersistence, "could not load category", err)
	}
	if existing != nil {
		return dto.CategoryResponse{}, validationError("a category with this name already exists")
	}

	c := &model.Category{Name: name}
	if err := s.repo.Create(ctx, c); err != nil {
		return dto.CategoryResponse{}, newError(ErrPersistence, "could not save category", err)
	}
	return mapCategory(*c), nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, newError(ErrPersistence, "could not list categories", err)
	}
	return mapCategories(list), nil
}
