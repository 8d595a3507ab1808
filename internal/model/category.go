package model

// Category classifies products. A product may belong to several categories.
type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (Category) TableName() string { return "categories" }
