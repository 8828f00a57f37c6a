package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/smartmenu-api/models"
	"gorm.io/gorm"
)

// TableView is the projection returned by a lookup.
type TableView struct {
	ID           string  `json:"id"`
	Number       int     `json:"table_number"`
	RestaurantID string  `json:"restaurantId"`
	Status       string  `json:"status"`
	Label        *string `json:"label"`
	Seats        int     `json:"seats"`
}

// DisplayLabel returns the explicit label, or "Table {number}" when unset.
func (v TableView) DisplayLabel() string {
	if v.Label != nil && *v.Label != "" {
		return *v.Label
	}
	return fmt.Sprintf("Table %d", v.Number)
}

func NewTableView(t models.Table) TableView {
	return TableView{
		ID:           t.ID,
		Number:       t.Number,
		RestaurantID: t.RestaurantID,
		Status:       t.Status,
		Label:        t.Label,
		Seats:        t.Seats,
	}
}

type TableResolver struct {
	DB *gorm.DB
}

func NewTableResolver(db *gorm.DB) *TableResolver {
	return &TableResolver{DB: db}
}

// Resolve finds the single table ref points at. Number lookups pick the
// most recently created row and are narrowed to restaurantID when it is
// not empty. Misses return a *NotFoundError.
func (r *TableResolver) Resolve(ctx context.Context, ref TableRef, restaurantID string) (*TableView, error) {
	notFound := &NotFoundError{SearchedFor: ref.Raw(), SearchType: ref.SearchType()}

	var table models.Table
	query := r.DB.WithContext(ctx).Model(&models.Table{})

	switch v := ref.(type) {
	case KeyRef:
		query = query.Where("LOWER(id) = ?", v.ID)
	case NumberRef:
		if !v.Valid {
			return nil, notFound
		}
		query = query.Where("number = ?", v.Number)
		if restaurantID != "" {
			query = query.Where("restaurant_id = ?", restaurantID)
		}
		query = query.Order("created_at DESC")
	default:
		return nil, fmt.Errorf("unsupported table reference %T", ref)
	}

	if err := query.First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("lookup table by %s: %w", ref.SearchType(), err)
	}

	view := NewTableView(table)
	return &view, nil
}
