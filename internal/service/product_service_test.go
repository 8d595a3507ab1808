package service_test

import (
	"context"
	"testing"
	"time"

	"shopapp/internal/dto"
	"shopapp/internal/model"
	"shopapp/internal/search"
	"shopapp/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubProductRepo attaches created products to the shops held by the shop stub,
// the way the preloads of the real repository would expose them.
type stubProductRepo struct {
	shops    *stubShopRepo
	products map[uint]model.Product
	nextID   uint
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.nextID++
	p.ID = r.nextID
	r.products[p.ID] = *p
	if p.ShopID != nil {
		s := r.shops.shops[*p.ShopID]
		s.Products = append(s.Products, *p)
		r.shops.shops[*p.ShopID] = s
	}
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if filter.ShopID != nil && (p.ShopID == nil || *p.ShopID != *filter.ShopID) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func TestCategory_CreateRejectsDuplicate(t *testing.T) {
	svc := service.NewCategoryService(newStubCategoryRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, dto.CrearCategoryRequest{Name: "Bakery"})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	_, err = svc.Create(ctx, dto.CrearCategoryRequest{Name: "Bakery"})
	assert.ErrorIs(t, err, service.ErrValidation)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProduct_CreateAttachesToShop(t *testing.T) {
	shops := newStubShopRepo()
	cats := newStubCategoryRepo()
	index := search.NewMemoryIndex()
	shopSvc := service.NewShopService(shops, index, nil, nil, nil, time.Minute)
	products := &stubProductRepo{shops: shops, products: make(map[uint]model.Product)}
	svc := service.NewProductService(products, cats, shops, shopSvc)
	ctx := context.Background()

	shop, err := shopSvc.Create(ctx, dto.CrearShopRequest{Name: "Deli"})
	require.NoError(t, err)
	require.NoError(t, cats.Create(ctx, &model.Category{Name: "food"}))
	require.NoError(t, cats.Create(ctx, &model.Category{Name: "bio"}))

	p, err := svc.Create(ctx, dto.CrearProductRequest{
		Name:        "Ham",
		Price:       decimal.RequireFromString("4.999"),
		ShopID:      &shop.ID,
		CategoryIDs: []uint{1, 2, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "5", p.Price.String())
	assert.Len(t, p.Categories, 2)

	doc, ok := index.Get(shop.ID)
	require.True(t, ok)
	assert.Equal(t, 1, doc.NbProducts)

	page, err := shopSvc.List(ctx, dto.ShopFilter{Size: 5})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, 2, page.Content[0].NumberOfCategories)
}

func TestProduct_CreateErrors(t *testing.T) {
	shops := newStubShopRepo()
	products := &stubProductRepo{shops: shops, products: make(map[uint]model.Product)}
	svc := service.NewProductService(products, newStubCategoryRepo(), shops, nil)
	ctx := context.Background()

	missing := uint(77)
	_, err := svc.Create(ctx, dto.CrearProductRequest{Name: "Orphan", ShopID: &missing})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Create(ctx, dto.CrearProductRequest{Name: "Tagged", CategoryIDs: []uint{3}})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Create(ctx, dto.CrearProductRequest{Name: "Cheap", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, service.ErrValidation)

	free, err := svc.Create(ctx, dto.CrearProductRequest{Name: "Free sample"})
	require.NoError(t, err)
	assert.Nil(t, free.ShopID)
}
