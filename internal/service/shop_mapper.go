package service

import (
	"shopapp/internal/dto"
	"shopapp/internal/model"
	"shopapp/internal/shopquery"
)

// mapShop converts a loaded shop aggregate to its entity view.
func mapShop(s model.Shop) dto.ShopResponse {
	hours := make([]dto.OpeningHoursResponse, 0, len(s.OpeningHours))
	for _, h := range s.OpeningHours {
		hours = append(hours, dto.OpeningHoursResponse{
			ID:      h.ID,
			Day:     h.Day,
			OpenAt:  h.OpenAt,
			CloseAt: h.CloseAt,
		})
	}
	products := make([]dto.ShopProductResponse, 0, len(s.Products))
	for _, p := range s.Products {
		products = append(products, dto.ShopProductResponse{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
			Categories: mapCategories(p.Categories),
		})
	}
	return dto.ShopResponse{
		ID:           s.ID,
		Name:         s.Name,
		CreatedAt:    s.CreatedAt.Format(shopquery.DateLayout),
		InVacations:  s.InVacations,
		NbProducts:   s.NbProducts(),
		OpeningHours: hours,
		Products:     products,
	}
}

// ToShopDto projects a loaded shop for listings and search results.
// numberOfCategories counts distinct categories across all of the shop's products.
func ToShopDto(s model.Shop) dto.ShopDto {
	return dto.ShopDto{
		ShopResponse:       mapShop(s),
		NumberOfCategories: countDistinctCategories(s.Products),
	}
}

func countDistinctCategories(products []model.Product) int {
	seen := make(map[uint]struct{})
	for _, p := range products {
		for _, c := range p.Categories {
			seen[c.ID] = struct{}{}
		}
	}
	return len(seen)
}
