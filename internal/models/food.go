package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Food listing lifecycle:
// available -> requested -> reserved -> delivered.
// A rejected request returns the listing to available.
const (
	FoodAvailable = "available"
	FoodRequested = "requested"
	FoodReserved  = "reserved"
	FoodDelivered = "delivered"
)

// FoodStatuses lists every status a listing can actually hold, used to
// validate admin filters.
var FoodStatuses = []string{FoodAvailable, FoodRequested, FoodReserved, FoodDelivered}

type Food struct {
	ID             uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Quantity       string         `gorm:"size:100;not null" json:"quantity"`
	PreparedTime   time.Time      `gorm:"not null" json:"prepared_time"`
	AvailableUntil time.Time      `gorm:"not null" json:"available_until"`
	Location       string         `gorm:"size:255;not null" json:"location"`
	PhotoURL       string         `gorm:"size:255" json:"photo_url,omitempty"`
	Status         string         `gorm:"size:20;not null;default:'available';index" json:"status"`
	DonorID        uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"donor_id"`

	Donor *User `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
}

func (f *Food) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func ValidFoodStatus(s string) bool {
	for _, v := range FoodStatuses {
		if v == s {
			return true
		}
	}
	return false
}
