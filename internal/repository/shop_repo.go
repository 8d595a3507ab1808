package repository

import (
	"context"
	"fmt"

	"shopapp/internal/model"
	"shopapp/internal/shopquery"

	"gorm.io/gorm"
)

// ShopRepository defines the data access contract for the shop aggregate.
// Every read returns the shop with its opening hours and products (with their
// categories) preloaded.
type ShopRepository interface {
	// Create inserts the shop and its opening hours in one transaction.
	Create(ctx context.Context, s *model.Shop) error
	FindByID(ctx context.Context, id uint) (*model.Shop, error)
	Exists(ctx context.Context, id uint) (bool, error)
	// Replace overwrites the shop columns and its whole opening-hours set.
	Replace(ctx context.Context, s *model.Shop) error
	// Delete detaches the shop's products, then removes the shop and its hours.
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q shopquery.Query) ([]model.Shop, int64, error)

	// Bulk loading, used by the mass indexer and search hydration.
	ListIDsAfter(ctx context.Context, afterID uint, limit int) ([]uint, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Shop, error)
}

type shopRepo struct{ db *gorm.DB }

func NewShopRepository(db *gorm.DB) ShopRepository { return &shopRepo{db: db} }

func (r *shopRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("OpeningHours", func(db *gorm.DB) *gorm.DB {
			return db.Order("day ASC, open_at ASC")
		}).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Products.Categories")
}

func (r *shopRepo) Create(ctx context.Context, s *model.Shop) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Products").Create(s).Error
	})
}

func (r *shopRepo) FindByID(ctx context.Context, id uint) (*model.Shop, error) {
	var s model.Shop
	if err := r.preloaded(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shopRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *shopRepo) Replace(ctx context.Context, s *model.Shop) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Shop{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
			"name":         s.Name,
			"created_at":   s.CreatedAt,
			"in_vacations": s.InVacations,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("shop_id = ?", s.ID).Delete(&model.OpeningHoursShop{}).Error; err != nil {
			return err
		}
		if len(s.OpeningHours) == 0 {
			return nil
		}
		for i := range s.OpeningHours {
			s.OpeningHours[i].ID = 0
			s.OpeningHours[i].ShopID = s.ID
		}
		return tx.Create(&s.OpeningHours).Error
	})
}

func (r *shopRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("shop_id = ?", id).
			Update("shop_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		if err := tx.Where("shop_id = ?", id).Delete(&model.OpeningHoursShop{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Shop{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *shopRepo) List(ctx context.Context, q shopquery.Query) ([]model.Shop, int64, error) {
	var total int64
	count, err := applyFilter(r.db.WithContext(ctx).Model(&model.Shop{}), q.Filter)
	if err != nil {
		return nil, 0, err
	}
	if err := count.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	shops := make([]model.Shop, 0, q.Size)
	if total == 0 {
		return shops, 0, nil
	}
	find, err := applyFilter(r.preloaded(ctx), q.Filter)
	if err != nil {
		return nil, 0, err
	}
	err = find.Order(orderBy(q.Sort)).Limit(q.Size).Offset(q.Offset()).Find(&shops).Error
	return shops, total, err
}

func (r *shopRepo) ListIDsAfter(ctx context.Context, afterID uint, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Shop{}).
		Where("id > ?", afterID).Order("id ASC").Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *shopRepo) FindByIDs(ctx context.Context, ids []uint) ([]model.Shop, error) {
	shops := make([]model.Shop, 0, len(ids))
	if len(ids) == 0 {
		return shops, nil
	}
	err := r.preloaded(ctx).Where("id IN ?", ids).Order("id ASC").Find(&shops).Error
	return shops, err
}

// ── Filter translation ──────────────────────────────────────────────────────

var shopColumns = map[shopquery.Field]string{
	shopquery.FieldInVacations: "shops.in_vacations",
	shopquery.FieldCreatedAt:   "shops.created_at",
}

// applyFilter ANDs every clause of f onto q.
func applyFilter(q *gorm.DB, f shopquery.Filter) (*gorm.DB, error) {
	for _, c := range f {
		col, ok := shopColumns[c.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported filter field %q", c.Field)
		}
		switch c.Op {
		case shopquery.OpEq:
			q = q.Where(col+" = ?", c.Value)
		case shopquery.OpGt:
			q = q.Where(col+" > ?", c.Value)
		case shopquery.OpLt:
			q = q.Where(col+" < ?", c.Value)
		case shopquery.OpBetween:
			q = q.Where(col+" BETWEEN ? AND ?", c.Value, c.Upper)
		default:
			return nil, fmt.Errorf("unsupported filter op %s", c.Op)
		}
	}
	return q, nil
}

func orderBy(k shopquery.SortKey) string {
	switch k {
	case shopquery.SortByName:
		return "shops.name ASC, shops.id ASC"
	case shopquery.SortByCreatedAt:
		return "shops.created_at ASC, shops.id ASC"
	case shopquery.SortByNbProducts:
		return "(SELECT COUNT(*) FROM products WHERE products.shop_id = shops.id) ASC, shops.id ASC"
	default:
		return "shops.id ASC"
	}
}
