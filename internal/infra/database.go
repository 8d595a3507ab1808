package infra

import (
	"fmt"

	"shopapp/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the schema
// up to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates all tables, then applies the patches
// AutoMigrate cannot express. Safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Category{},
		&model.Shop{},
		&model.OpeningHoursShop{},
		&model.Product{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// listing filters and the createdAt sort
		{"idx_shops_created_at",
			`CREATE INDEX IF NOT EXISTS idx_shops_created_at ON shops (created_at)`},
		{"idx_shops_in_vacations_created_at",
			`CREATE INDEX IF NOT EXISTS idx_shops_in_vacations_created_at ON shops (in_vacations, created_at)`},
		// products must survive the deletion of their shop
		{"products.shop_id on delete set null", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_shops_products') THEN
    ALTER TABLE products DROP CONSTRAINT fk_shops_products;
    ALTER TABLE products
      ADD CONSTRAINT fk_shops_products
      FOREIGN KEY (shop_id) REFERENCES shops(id) ON DELETE SET NULL;
  END IF;
END $$`},
		{"products_categories reverse lookup",
			`CREATE INDEX IF NOT EXISTS idx_products_categories_category ON products_categories (category_id)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
