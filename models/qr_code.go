package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRCode maps a table to the URL printed on its placard. At most one row
// exists per table.
type QRCode struct {
	ID        string    `gorm:"column:qr_code_id;type:varchar(36);primaryKey" json:"qr_code_id"`
	TableID   string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"table_id"`
	Table     *Table    `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	QRData    string    `gorm:"column:qr_data;type:varchar(512);not null" json:"qr_data"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (QRCode) TableName() string {
	return "qr_codes"
}

func (q *QRCode) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
