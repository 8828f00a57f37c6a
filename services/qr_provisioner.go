package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/smartmenu-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPublicBaseURL is only meant for local development; printed
// placards need the real frontend origin.
const DefaultPublicBaseURL = "http://localhost:8080"

// QRProvisioner hands out the QR record of a table, creating it on first use.
// Existing records are never regenerated so printed placards stay valid.
type QRProvisioner struct {
	DB      *gorm.DB
	BaseURL string
}

func NewQRProvisioner(db *gorm.DB, baseURL string) *QRProvisioner {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultPublicBaseURL
	}
	return &QRProvisioner{DB: db, BaseURL: baseURL}
}

// URLFor builds the menu URL encoded in a table's QR code.
func (p *QRProvisioner) URLFor(tableID string) string {
	return p.BaseURL + "/menu/" + tableID
}

// Current returns the newest QR record of the table, or nil when none exists.
func (p *QRProvisioner) Current(ctx context.Context, tableID string) (*models.QRCode, error) {
	var qr models.QRCode
	err := p.DB.WithContext(ctx).
		Where("table_id = ?", tableID).
		Order("created_at DESC").
		First(&qr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch qr code for table %s: %w", tableID, err)
	}
	return &qr, nil
}

// Provision returns the table's QR record and whether this call created it.
// The unique index on table_id makes a concurrent first request fall back to
// the row that won the insert.
func (p *QRProvisioner) Provision(ctx context.Context, tableID string) (*models.QRCode, bool, error) {
	existing, err := p.Current(ctx, tableID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	qr := models.QRCode{
		TableID: tableID,
		QRData:  p.URLFor(tableID),
	}
	result := p.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "table_id"}},
			DoNothing: true,
		}).
		Create(&qr)
	if result.Error != nil {
		return nil, false, fmt.Errorf("create qr code for table %s: %w", tableID, result.Error)
	}
	created := result.RowsAffected > 0

	stored, err := p.Current(ctx, tableID)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, fmt.Errorf("qr code for table %s missing after insert", tableID)
	}
	return stored, created, nil
}
