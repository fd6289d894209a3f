package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodbridge/backend/internal/models"
)

// AdminService is the read-mostly reporting surface behind the admin
// console. Its only writes are user verification and rejection.
type AdminService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewAdminService(db *gorm.DB, activity *ActivityService) *AdminService {
	return &AdminService{db: db, activity: activity}
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role     string
	Verified *bool
	Page     int
	Limit    int
}

// Users lists accounts newest-first with login metadata preloaded.
func (s *AdminService) Users(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	query := s.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Verified != nil {
		query = query.Where("verified = ?", *filter.Verified)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Preload("LoginHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("login_time DESC")
	}).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// PendingUsers lists accounts awaiting verification.
func (s *AdminService) PendingUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("verified = ?", false).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

// VerifyUser flips the verification gate so the account may log in.
func (s *AdminService) VerifyUser(ctx context.Context, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("verified", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}

// RejectUser deletes an account outright.
func (s *AdminService) RejectUser(ctx context.Context, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}

// AllFood lists every listing, optionally filtered by status.
func (s *AdminService) AllFood(ctx context.Context, status string, page, limit int) ([]models.Food, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Food{})
	if status != "" {
		if !models.ValidFoodStatus(status) {
			return nil, 0, fmt.Errorf("%w: unknown food status %q", ErrValidation, status)
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var foods []models.Food
	err := query.Preload("Donor").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&foods).Error
	if err != nil {
		return nil, 0, err
	}
	return foods, total, nil
}

// AllRequests lists every request, optionally filtered by status.
func (s *AdminService) AllRequests(ctx context.Context, status string, page, limit int) ([]models.Request, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Request{})
	if status != "" {
		if !models.ValidRequestStatus(status) {
			return nil, 0, fmt.Errorf("%w: unknown request status %q", ErrValidation, status)
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []models.Request
	err := query.Preload("Food").
		Preload("Donor").
		Preload("Receiver").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// UserCounts summarizes the account population.
type UserCounts struct {
	Donors    int64 `json:"donors"`
	Receivers int64 `json:"receivers"`
	Pending   int64 `json:"pending"`
	Total     int64 `json:"total"`
}

// Statistics is the admin console's aggregate report.
type Statistics struct {
	Users      UserCounts       `json:"users"`
	Food       map[string]int64 `json:"food"`
	Requests   map[string]int64 `json:"requests"`
	Today      int64            `json:"activities_today"`
	ByRole     []RoleStats      `json:"activities_by_role"`
	WindowDays int              `json:"window_days"`
}

// Report aggregates counts across users, listings, requests and the
// trailing activity window.
func (s *AdminService) Report(ctx context.Context, days int) (*Statistics, error) {
	if days < 1 {
		days = 7
	}
	stats := &Statistics{
		Food:       make(map[string]int64),
		Requests:   make(map[string]int64),
		WindowDays: days,
	}

	userCounts := []struct {
		name string
		dest *int64
		cond func(*gorm.DB) *gorm.DB
	}{
		{"donors", &stats.Users.Donors, func(q *gorm.DB) *gorm.DB {
			return q.Where("role = ? AND verified = ?", models.RoleDonor, true)
		}},
		{"receivers", &stats.Users.Receivers, func(q *gorm.DB) *gorm.DB {
			return q.Where("role = ? AND verified = ?", models.RoleReceiver, true)
		}},
		{"pending", &stats.Users.Pending, func(q *gorm.DB) *gorm.DB {
			return q.Where("verified = ?", false)
		}},
	}
	for _, c := range userCounts {
		if err := c.cond(s.db.WithContext(ctx).Model(&models.User{})).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
	}
	stats.Users.Total = stats.Users.Donors + stats.Users.Receivers

	if err := s.countByStatus(ctx, &models.Food{}, models.FoodStatuses, stats.Food); err != nil {
		return nil, err
	}
	if err := s.countByStatus(ctx, &models.Request{}, models.RequestStatuses, stats.Requests); err != nil {
		return nil, err
	}

	midnight := time.Now().Truncate(24 * time.Hour)
	today, err := s.activity.CountSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's activity: %w", err)
	}
	stats.Today = today

	byRole, err := s.activity.Statistics(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity: %w", err)
	}
	stats.ByRole = byRole

	return stats, nil
}

func (s *AdminService) countByStatus(ctx context.Context, model interface{}, statuses []string, dest map[string]int64) error {
	var total int64
	if err := s.db.WithContext(ctx).Model(model).Count(&total).Error; err != nil {
		return err
	}
	dest["total"] = total

	for _, status := range statuses {
		var count int64
		if err := s.db.WithContext(ctx).Model(model).Where("status = ?", status).Count(&count).Error; err != nil {
			return err
		}
		dest[status] = count
	}
	return nil
}

// Dashboard bundles the data behind the admin landing page.
type Dashboard struct {
	RecentActivities []models.Activity `json:"recent_activities"`
	PendingUsers     []models.User     `json:"pending_users"`
	Statistics       *Statistics       `json:"statistics"`
}

func (s *AdminService) DashboardData(ctx context.Context) (*Dashboard, error) {
	recent, _, err := s.activity.Recent(ctx, ActivityFilter{Page: 1, Limit: 10})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}
	pending, err := s.PendingUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending users: %w", err)
	}
	stats, err := s.Report(ctx, 7)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		RecentActivities: recent,
		PendingUsers:     pending,
		Statistics:       stats,
	}, nil
}
