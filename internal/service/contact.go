package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/types"
)

var (
	contactNameRe    = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	contactEmailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	contactSubjectRe = regexp.MustCompile(`^[a-zA-Z0-9\s\-.,!?]+$`)
	contactMessageRe = regexp.MustCompile(`^[a-zA-Z0-9\s\-.,!?()'"]+$`)
)

// ContactService manages the visitor message inbox. Status transitions
// only move forward: unread -> read, any -> replied.
type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

// ValidateContact returns every field problem in a submission.
func ValidateContact(req types.ContactRequest) []string {
	var problems []string

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 50 {
		problems = append(problems, "Name must be between 2 and 50 characters long")
	} else if !contactNameRe.MatchString(name) {
		problems = append(problems, "Name can only contain letters and spaces")
	}

	if !contactEmailRe.MatchString(strings.TrimSpace(req.Email)) {
		problems = append(problems, "Please enter a valid email address")
	}

	subject := strings.TrimSpace(req.Subject)
	if len(subject) < 5 || len(subject) > 100 {
		problems = append(problems, "Subject must be between 5 and 100 characters long")
	} else if !contactSubjectRe.MatchString(subject) {
		problems = append(problems, "Subject contains invalid characters")
	}

	message := strings.TrimSpace(req.Message)
	if len(message) < 10 || len(message) > 1000 {
		problems = append(problems, "Message must be between 10 and 1000 characters long")
	} else if !contactMessageRe.MatchString(message) {
		problems = append(problems, "Message contains invalid characters")
	}

	return problems
}

// Submit stores a validated visitor message as unread.
func (s *ContactService) Submit(ctx context.Context, req types.ContactRequest, client Client) (*models.Contact, error) {
	if problems := ValidateContact(req); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}

	contact := models.Contact{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		Status:    models.ContactUnread,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
	}
	if err := s.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}
	return &contact, nil
}

// List returns messages newest-first with the total for pagination.
func (s *ContactService) List(ctx context.Context, status string, page, limit int) ([]models.Contact, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := s.db.WithContext(ctx).Model(&models.Contact{})
	if status != "" {
		if !models.ValidContactStatus(status) {
			return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Contact
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// UnreadCount counts messages still awaiting a first look.
func (s *ContactService) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Contact{}).
		Where("status = ?", models.ContactUnread).
		Count(&count).Error
	return count, err
}

// MarkRead moves an unread message to read. Read and replied messages are
// left untouched.
func (s *ContactService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.Contact{}).
		Where("id = ? AND status = ?", id, models.ContactUnread).
		Update("status", models.ContactRead).Error
}

// MarkReplied moves a message to replied from any state.
func (s *ContactService) MarkReplied(ctx context.Context, id uuid.UUID) error {
	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.Contact{}).
		Where("id = ?", id).
		Update("status", models.ContactReplied).Error
}

// Delete removes a message from the inbox.
func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: message", ErrNotFound)
	}
	return nil
}

func (s *ContactService) ensureExists(ctx context.Context, id uuid.UUID) error {
	var contact models.Contact
	if err := s.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: message", ErrNotFound)
		}
		return err
	}
	return nil
}
