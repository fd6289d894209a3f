package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. Admin is a config-derived credential pair, never a row here.
const (
	RoleDonor    = "donor"
	RoleReceiver = "receiver"
	RoleAdmin    = "admin"
)

// LoginHistoryLimit is the number of login records kept per user.
// Older entries are evicted on each successful login.
const LoginHistoryLimit = 20

type User struct {
	ID            uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Name          string         `gorm:"not null" json:"name"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"not null" json:"-"`
	Role          string         `gorm:"size:20;not null" json:"role"`
	Location      string         `gorm:"size:255" json:"location"`
	Verified      bool           `gorm:"not null;default:false" json:"verified"`
	Points        int            `gorm:"not null;default:0" json:"points"`
	LastLoginIP   string         `gorm:"size:64" json:"last_login_ip,omitempty"`
	LastLoginDate *time.Time     `json:"last_login_date,omitempty"`

	LoginHistory []LoginRecord `gorm:"foreignKey:UserID" json:"login_history,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// LoginRecord is one entry in a user's bounded login history.
type LoginRecord struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	IPAddress string    `gorm:"size:64" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	LoginTime time.Time `gorm:"not null" json:"login_time"`
}

func (r *LoginRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
