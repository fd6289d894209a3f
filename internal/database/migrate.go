package database

import (
	"gorm.io/gorm"

	"github.com/foodbridge/backend/internal/models"
)

// Migrate brings the schema up to date. GORM auto-migration covers every
// table here; the composite unique index on requests comes from the model
// tags.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.LoginRecord{},
		&models.Food{},
		&models.Request{},
		&models.Activity{},
		&models.Contact{},
	)
}
