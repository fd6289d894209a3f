package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/types"
)

// recorderBuffer is the size of the pending-entry queue. A full queue falls
// back to a synchronous best-effort write so entries are not dropped under
// normal operation.
const recorderBuffer = 256

// ActivityService appends immutable audit records and serves the admin
// feed and statistics. Writes are dispatched asynchronously: a failed
// insert is retried once, then logged and dropped. Audit gaps are
// tolerated over blocking a user-facing mutation.
type ActivityService struct {
	db  *gorm.DB
	log *logrus.Logger

	entries   chan *models.Activity
	done      chan struct{}
	closeOnce sync.Once
}

func NewActivityService(db *gorm.DB, log *logrus.Logger) *ActivityService {
	s := &ActivityService{
		db:      db,
		log:     log,
		entries: make(chan *models.Activity, recorderBuffer),
		done:    make(chan struct{}),
	}
	go s.dispatch()
	return s
}

// Record queues an audit entry for persistence. It never returns an error
// and never blocks the caller beyond a full-queue fallback write.
func (s *ActivityService) Record(actor types.Identity, activityType, description string, meta models.ActivityMetadata, ip, userAgent string) {
	entry := &models.Activity{
		UserID:      actor.UserID,
		UserName:    actor.Name,
		UserRole:    actor.Role,
		Type:        activityType,
		Description: description,
		Metadata:    meta,
		IPAddress:   ip,
		UserAgent:   userAgent,
	}

	select {
	case s.entries <- entry:
	default:
		s.persist(entry)
	}
}

// Close drains pending entries. Call on shutdown.
func (s *ActivityService) Close() {
	s.closeOnce.Do(func() {
		close(s.entries)
		<-s.done
	})
}

func (s *ActivityService) dispatch() {
	defer close(s.done)
	for entry := range s.entries {
		s.persist(entry)
	}
}

func (s *ActivityService) persist(entry *models.Activity) {
	err := s.db.Create(entry).Error
	if err == nil {
		return
	}
	// one retry, then drop
	if err = s.db.Create(entry).Error; err != nil {
		s.log.WithFields(logrus.Fields{
			"activity_type": entry.Type,
			"user_id":       entry.UserID,
		}).WithError(err).Warn("dropping audit entry after retry")
	}
}

// ActivityFilter narrows the admin activity feed.
type ActivityFilter struct {
	Role   string
	Type   string
	UserID *uuid.UUID
	Page   int
	Limit  int
}

// Recent returns the newest-first activity feed with the total count for
// pagination.
func (s *ActivityService) Recent(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Activity{})
	if filter.Role != "" {
		query = query.Where("user_role = ?", filter.Role)
	}
	if filter.Type != "" {
		query = query.Where("activity_type = ?", filter.Type)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []models.Activity
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&activities).Error
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

// ForUser returns a single user's newest activities.
func (s *ActivityService) ForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Activity, error) {
	if limit < 1 {
		limit = 20
	}
	var activities []models.Activity
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

// CountSince counts activities recorded at or after the given instant.
func (s *ActivityService) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Activity{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// TypeCount is one activity type's tally inside a role bucket.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// RoleStats aggregates a role's activity over the statistics window.
type RoleStats struct {
	Role       string      `json:"role"`
	Activities []TypeCount `json:"activities"`
	Total      int64       `json:"total"`
}

// Statistics aggregates activity over a trailing N-day window: a group-by
// on (role, type) counts, regrouped per role with a role total.
func (s *ActivityService) Statistics(ctx context.Context, days int) ([]RoleStats, error) {
	if days < 1 {
		days = 7
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	var rows []struct {
		UserRole     string
		ActivityType string
		Count        int64
	}
	err := s.db.WithContext(ctx).Model(&models.Activity{}).
		Select("user_role, activity_type, count(*) as count").
		Where("created_at >= ?", cutoff).
		Group("user_role").
		Group("activity_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byRole := make(map[string]*RoleStats)
	for _, row := range rows {
		stats, ok := byRole[row.UserRole]
		if !ok {
			stats = &RoleStats{Role: row.UserRole}
			byRole[row.UserRole] = stats
		}
		stats.Activities = append(stats.Activities, TypeCount{Type: row.ActivityType, Count: row.Count})
		stats.Total += row.Count
	}

	result := make([]RoleStats, 0, len(byRole))
	for _, stats := range byRole {
		sort.Slice(stats.Activities, func(i, j int) bool {
			return stats.Activities[i].Type < stats.Activities[j].Type
		})
		result = append(result, *stats)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Role < result[j].Role })
	return result, nil
}
