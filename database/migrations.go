package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/smartmenu-api/models"
	"gorm.io/gorm"
)

// Models lists every table the API owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Table{},
		&models.QRCode{},
		&models.MenuAssignment{},
	}
}

// Migrate brings the schema up to date. Safe to run on every start.
func Migrate(db *gorm.DB, log logrus.FieldLogger) error {
	if err := AddResetTokenColumns(db, log); err != nil {
		return err
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("AutoMigrate completed")
	return nil
}

// AddResetTokenColumns adds the password-reset columns to a users table
// created before they existed. Columns that are already present are left alone.
func AddResetTokenColumns(db *gorm.DB, log logrus.FieldLogger) error {
	m := db.Migrator()
	if !m.HasTable(&models.User{}) {
		return nil
	}

	for _, field := range []string{"ResetToken", "ResetTokenExpiry"} {
		if m.HasColumn(&models.User{}, field) {
			log.WithField("column", field).Debug("column already present")
			continue
		}
		if err := m.AddColumn(&models.User{}, field); err != nil {
			return fmt.Errorf("add users.%s: %w", field, err)
		}
		log.WithField("column", field).Info("added column to users")
	}
	return nil
}
