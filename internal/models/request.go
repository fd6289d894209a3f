package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Request states. Accepted and rejected are terminal.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

var RequestStatuses = []string{RequestPending, RequestAccepted, RequestRejected}

// Request is a receiver's claim against a single Food listing. DonorID is
// denormalized from the listing at creation time. The composite unique
// index keeps a receiver from claiming the same listing twice, even under
// concurrent submissions.
type Request struct {
	ID         uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	FoodID     uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_requests_food_receiver" json:"food_id"`
	ReceiverID uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_requests_food_receiver" json:"receiver_id"`
	DonorID    uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"donor_id"`
	Status     string         `gorm:"size:20;not null;default:'pending';index" json:"status"`

	Food     *Food `gorm:"foreignKey:FoodID" json:"food,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Donor    *User `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func ValidRequestStatus(s string) bool {
	for _, v := range RequestStatuses {
		if v == s {
			return true
		}
	}
	return false
}
