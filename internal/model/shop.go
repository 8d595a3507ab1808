package model

import "time"

// Shop is the aggregate root of the catalog. OpeningHours are owned by the shop;
// Products only reference it through Product.ShopID.
type Shop struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"type:date;not null"`
	InVacations bool      `gorm:"not null;default:false"`

	OpeningHours []OpeningHoursShop `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	Products     []Product          `gorm:"foreignKey:ShopID"`
}

func (Shop) TableName() string { return "shops" }

// NbProducts is the number of products currently attached to the shop.
// Products must be preloaded.
func (s Shop) NbProducts() int { return len(s.Products) }

// OpeningHoursShop is one opening slot of a shop on a weekday (1 = Monday … 7 = Sunday).
// OpenAt and CloseAt are times of day stored as "15:04:05".
type OpeningHoursShop struct {
	ID      uint   `gorm:"primaryKey"`
	ShopID  uint   `gorm:"index:idx_opening_hours_shop_day;not null"`
	Day     int    `gorm:"index:idx_opening_hours_shop_day;not null"`
	OpenAt  string `gorm:"type:varchar(8);not null"`
	CloseAt string `gorm:"type:varchar(8);not null"`
}

func (OpeningHoursShop) TableName() string { return "opening_hours_shops" }
