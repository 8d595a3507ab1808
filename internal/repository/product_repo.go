package repository

import (
	"context"

	"shopapp/internal/dto"
	"shopapp/internal/model"

	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for products.
type ProductRepository interface {
	// Create inserts the product and links it to its (existing) categories.
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Omit("Categories.*").Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Categories").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.ShopID != nil {
		q = q.Where("products.shop_id = ?", *filter.ShopID)
	}
	if filter.CategoryID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM products_categories pc WHERE pc.product_id = products.id AND pc.category_id = ?)", *filter.CategoryID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := filter.Page * filter.Size
	err := q.Preload("Categories").Order("products.id ASC").Limit(filter.Size).Offset(offset).Find(&products).Error
	return products, total, err
}
