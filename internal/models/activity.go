package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity types recorded by the audit trail.
const (
	ActivityFoodPosted       = "food_posted"
	ActivityFoodUpdated      = "food_updated"
	ActivityFoodDeleted      = "food_deleted"
	ActivityRequestMade      = "request_made"
	ActivityRequestAccepted  = "request_accepted"
	ActivityRequestRejected  = "request_rejected"
	ActivityRequestCompleted = "request_completed"
	ActivityRequestCancelled = "request_cancelled"
	ActivityLogin            = "login"
	ActivityProfileUpdated   = "profile_updated"
)

// ActivityMetadata carries event-specific detail as a JSON column.
type ActivityMetadata struct {
	FoodID    *uuid.UUID     `json:"food_id,omitempty"`
	RequestID *uuid.UUID     `json:"request_id,omitempty"`
	FoodName  string         `json:"food_name,omitempty"`
	Quantity  string         `json:"quantity,omitempty"`
	Location  string         `json:"location,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Value implements the driver.Valuer interface
func (m ActivityMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *ActivityMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = ActivityMetadata{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}

	return json.Unmarshal(bytes, m)
}

// Activity is an immutable audit record of a domain event. Rows are only
// ever appended, never updated or deleted.
type Activity struct {
	ID          uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
	UserID      uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	UserName    string           `gorm:"size:255;not null" json:"user_name"`
	UserRole    string           `gorm:"size:20;not null;index" json:"user_role"`
	Type        string           `gorm:"column:activity_type;size:50;not null;index" json:"activity_type"`
	Description string           `gorm:"type:text;not null" json:"description"`
	Metadata    ActivityMetadata `gorm:"type:text" json:"metadata"`
	IPAddress   string           `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent   string           `gorm:"size:255" json:"user_agent,omitempty"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
