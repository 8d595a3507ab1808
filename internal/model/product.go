package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is sold by at most one shop. ShopID is nil once the product has been
// detached from a deleted shop.
type Product struct {
	ID        uint            `gorm:"primaryKey"`
	ShopID    *uint           `gorm:"index"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time

	Categories []Category `gorm:"many2many:products_categories"`
}

func (Product) TableName() string { return "products" }
