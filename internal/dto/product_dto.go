package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductRequest struct {
	Name        string          `json:"name"        validate:"required,min=2,max=120"`
	Price       decimal.Decimal `json:"price"`
	ShopID      *uint           `json:"shopId"`
	CategoryIDs []uint          `json:"categoryIds"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	ShopID     *uint `form:"shopId"`
	CategoryID *uint `form:"categoryId"`
	Page       int   `form:"page,default=0" validate:"min=0"`
	Size       int   `form:"size,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID         uint               `json:"id"`
	Name       string             `json:"name"`
	Price      decimal.Decimal    `json:"price"`
	ShopID     *uint              `json:"shopId"`
	Categories []CategoryResponse `json:"categories"`
}
