package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TableStatusAvailable   = "available"
	TableStatusUnavailable = "unavailable"
	TableStatusOccupied    = "occupied"
)

type Table struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID string    `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Number       int       `gorm:"not null;index" json:"number"`
	Seats        int       `gorm:"not null;default:4" json:"seats"`
	Status       string    `gorm:"type:varchar(50);not null;default:'available'" json:"status"`
	Label        *string   `gorm:"type:varchar(100)" json:"label"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
