package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpeningHoursRequest struct {
	ID      uint   `json:"id"`
	Day     int    `json:"day"`
	OpenAt  string `json:"openAt"  validate:"required"`
	CloseAt string `json:"closeAt" validate:"required"`
}

type CrearShopRequest struct {
	Name         string                `json:"name"         validate:"required,min=1,max=255"`
	CreatedAt    string                `json:"createdAt"    validate:"omitempty,datetime=2006-01-02"`
	InVacations  bool                  `json:"inVacations"`
	OpeningHours []OpeningHoursRequest `json:"openingHours" validate:"dive"`
}

// ActualizarShopRequest replaces every field of an existing shop.
type ActualizarShopRequest struct {
	ID           uint                  `json:"id"           validate:"required"`
	Name         string                `json:"name"         validate:"required,min=1,max=255"`
	CreatedAt    string                `json:"createdAt"    validate:"omitempty,datetime=2006-01-02"`
	InVacations  bool                  `json:"inVacations"`
	OpeningHours []OpeningHoursRequest `json:"openingHours" validate:"dive"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ShopFilter struct {
	Page          int    `form:"page,default=0"  validate:"min=0"`
	Size          int    `form:"size,default=5"  validate:"min=1,max=100"`
	SortBy        string `form:"sortBy"`
	InVacations   *bool  `form:"inVacations"`
	CreatedAfter  string `form:"createdAfter"`
	CreatedBefore string `form:"createdBefore"`
}

type ShopSearchFilter struct {
	Name          string `form:"name"          validate:"required"`
	InVacations   *bool  `form:"inVacations"`
	CreatedAfter  string `form:"createdAfter"`
	CreatedBefore string `form:"createdBefore"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OpeningHoursResponse struct {
	ID      uint   `json:"id"`
	Day     int    `json:"day"`
	OpenAt  string `json:"openAt"`
	CloseAt string `json:"closeAt"`
}

type ShopProductResponse struct {
	ID         uint               `json:"id"`
	Name       string             `json:"name"`
	Price      decimal.Decimal    `json:"price"`
	Categories []CategoryResponse `json:"categories"`
}

// ShopResponse is the entity view returned by create, get and update.
type ShopResponse struct {
	ID           uint                   `json:"id"`
	Name         string                 `json:"name"`
	CreatedAt    string                 `json:"createdAt"`
	InVacations  bool                   `json:"inVacations"`
	NbProducts   int                    `json:"nbProducts"`
	OpeningHours []OpeningHoursResponse `json:"openingHours"`
	Products     []ShopProductResponse  `json:"products"`
}

// ShopDto is the listing/search projection of a shop.
type ShopDto struct {
	ShopResponse
	NumberOfCategories int `json:"numberOfCategories"`
}
