package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact message states. Transitions only move forward:
// unread -> read, any -> replied.
const (
	ContactUnread  = "unread"
	ContactRead    = "read"
	ContactReplied = "replied"
)

var ContactStatuses = []string{ContactUnread, ContactRead, ContactReplied}

// Contact is a visitor-submitted message, independent of user accounts.
type Contact struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	Subject   string    `gorm:"size:100;not null" json:"subject"`
	Message   string    `gorm:"size:1000;not null" json:"message"`
	Status    string    `gorm:"size:20;not null;default:'unread';index" json:"status"`
	IPAddress string    `gorm:"size:64;not null" json:"ip_address"`
	UserAgent string    `gorm:"size:255;not null" json:"user_agent"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func ValidContactStatus(s string) bool {
	for _, v := range ContactStatuses {
		if v == s {
			return true
		}
	}
	return false
}
