package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/types"
)

// DeliveryReward is the fixed number of points a donor earns per completed
// delivery. Awarded at most once per listing.
const DeliveryReward = 10

// Client carries the request metadata stamped onto audit records.
type Client struct {
	IP        string
	UserAgent string
}

// FoodService implements the listing/request lifecycle:
//
//	available --request--> requested --accept--> reserved --deliver--> delivered
//
// A rejection returns the listing to available. Every transition is a
// conditional update on the status column so concurrent callers cannot
// both take the same step.
type FoodService struct {
	db       *gorm.DB
	activity *ActivityService
	log      *logrus.Logger
}

func NewFoodService(db *gorm.DB, activity *ActivityService, log *logrus.Logger) *FoodService {
	return &FoodService{db: db, activity: activity, log: log}
}

// tryClaim performs a compare-and-swap on a listing's status. Returns
// false when the listing was not in the expected state.
func tryClaim(tx *gorm.DB, foodID uuid.UUID, expected, next string) (bool, error) {
	result := tx.Model(&models.Food{}).
		Where("id = ? AND status = ?", foodID, expected).
		Update("status", next)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// PostFood creates a new available listing owned by the donor.
func (s *FoodService) PostFood(ctx context.Context, donor types.Identity, req types.PostFoodRequest, client Client) (*models.Food, error) {
	if req.AvailableUntil.Before(req.PreparedTime) {
		return nil, fmt.Errorf("%w: available_until precedes prepared_time", ErrValidation)
	}

	food := models.Food{
		Name:           req.Name,
		Quantity:       req.Quantity,
		PreparedTime:   req.PreparedTime,
		AvailableUntil: req.AvailableUntil,
		Location:       req.Location,
		Status:         models.FoodAvailable,
		DonorID:        donor.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&food).Error; err != nil {
		return nil, fmt.Errorf("failed to create food listing: %w", err)
	}

	s.activity.Record(donor, models.ActivityFoodPosted,
		fmt.Sprintf("Posted food: %s", food.Name),
		models.ActivityMetadata{
			FoodID:   &food.ID,
			FoodName: food.Name,
			Quantity: food.Quantity,
			Location: food.Location,
		}, client.IP, client.UserAgent)

	return &food, nil
}

// UpdateFood edits a listing the donor owns. Only available listings can
// be edited.
func (s *FoodService) UpdateFood(ctx context.Context, donor types.Identity, foodID uuid.UUID, req types.UpdateFoodRequest, client Client) (*models.Food, error) {
	food, err := s.loadOwnedFood(ctx, donor, foodID)
	if err != nil {
		return nil, err
	}
	if food.Status != models.FoodAvailable {
		return nil, fmt.Errorf("%w: listing is no longer editable", ErrConflict)
	}

	if req.Name != "" {
		food.Name = req.Name
	}
	if req.Quantity != "" {
		food.Quantity = req.Quantity
	}
	if req.Location != "" {
		food.Location = req.Location
	}
	if req.PreparedTime != nil {
		food.PreparedTime = *req.PreparedTime
	}
	if req.AvailableUntil != nil {
		food.AvailableUntil = *req.AvailableUntil
	}
	if food.AvailableUntil.Before(food.PreparedTime) {
		return nil, fmt.Errorf("%w: available_until precedes prepared_time", ErrValidation)
	}

	if err := s.db.WithContext(ctx).Save(food).Error; err != nil {
		return nil, fmt.Errorf("failed to update food listing: %w", err)
	}

	s.activity.Record(donor, models.ActivityFoodUpdated,
		fmt.Sprintf("Updated food: %s", food.Name),
		models.ActivityMetadata{FoodID: &food.ID, FoodName: food.Name},
		client.IP, client.UserAgent)

	return food, nil
}

// DeleteFood withdraws an available listing the donor owns.
func (s *FoodService) DeleteFood(ctx context.Context, donor types.Identity, foodID uuid.UUID, client Client) error {
	food, err := s.loadOwnedFood(ctx, donor, foodID)
	if err != nil {
		return err
	}
	if food.Status != models.FoodAvailable {
		return fmt.Errorf("%w: only available listings can be withdrawn", ErrConflict)
	}

	if err := s.db.WithContext(ctx).Delete(food).Error; err != nil {
		return fmt.Errorf("failed to delete food listing: %w", err)
	}

	s.activity.Record(donor, models.ActivityFoodDeleted,
		fmt.Sprintf("Deleted food: %s", food.Name),
		models.ActivityMetadata{FoodID: &food.ID, FoodName: food.Name},
		client.IP, client.UserAgent)

	return nil
}

// CheckOwnership verifies a listing exists and belongs to the donor.
func (s *FoodService) CheckOwnership(ctx context.Context, donor types.Identity, foodID uuid.UUID) error {
	_, err := s.loadOwnedFood(ctx, donor, foodID)
	return err
}

// SetPhoto stores the uploaded photo URL on a listing the donor owns.
func (s *FoodService) SetPhoto(ctx context.Context, donor types.Identity, foodID uuid.UUID, url string) (*models.Food, error) {
	food, err := s.loadOwnedFood(ctx, donor, foodID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(food).Update("photo_url", url).Error; err != nil {
		return nil, fmt.Errorf("failed to save photo url: %w", err)
	}
	food.PhotoURL = url
	return food, nil
}

// RequestFood claims an available listing for the receiver. Exactly one of
// N concurrent callers wins the claim; the rest observe a conflict. A
// receiver can claim a given listing at most once, ever.
func (s *FoodService) RequestFood(ctx context.Context, receiver types.Identity, foodID uuid.UUID, client Client) (*models.Request, error) {
	var food models.Food
	if err := s.db.WithContext(ctx).Preload("Donor").First(&food, "id = ?", foodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: food listing", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load food listing: %w", err)
	}

	// fast-path duplicate check; the unique index is the real guard
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Request{}).
		Where("food_id = ? AND receiver_id = ?", foodID, receiver.UserID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing request: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: you have already requested this food", ErrConflict)
	}

	claimed, err := tryClaim(s.db.WithContext(ctx), foodID, models.FoodAvailable, models.FoodRequested)
	if err != nil {
		return nil, fmt.Errorf("failed to claim food listing: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: food is no longer available", ErrConflict)
	}

	request := models.Request{
		FoodID:     foodID,
		ReceiverID: receiver.UserID,
		DonorID:    food.DonorID,
		Status:     models.RequestPending,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		// release the claim so the listing is not stranded in requested
		if _, revertErr := tryClaim(s.db.WithContext(ctx), foodID, models.FoodRequested, models.FoodAvailable); revertErr != nil {
			s.log.WithError(revertErr).WithField("food_id", foodID).Error("failed to release claim after request insert failure")
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: you have already requested this food", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	donorName := ""
	if food.Donor != nil {
		donorName = food.Donor.Name
	}
	s.activity.Record(receiver, models.ActivityRequestMade,
		fmt.Sprintf("Requested %s from %s", food.Name, donorName),
		models.ActivityMetadata{
			RequestID: &request.ID,
			FoodID:    &food.ID,
			FoodName:  food.Name,
			Quantity:  food.Quantity,
			Location:  food.Location,
		}, client.IP, client.UserAgent)

	return &request, nil
}

// AcceptRequest resolves a pending request in the receiver's favor and
// reserves the listing. Request and listing move together or not at all.
func (s *FoodService) AcceptRequest(ctx context.Context, donor types.Identity, requestID uuid.UUID, client Client) (*models.Request, error) {
	request, err := s.loadOwnedRequest(ctx, donor, requestID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Request{}).
			Where("id = ? AND status = ?", requestID, models.RequestPending).
			Update("status", models.RequestAccepted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: request already resolved", ErrConflict)
		}

		claimed, err := tryClaim(tx, request.FoodID, models.FoodRequested, models.FoodReserved)
		if err != nil {
			return err
		}
		if !claimed {
			return fmt.Errorf("%w: food listing is not awaiting acceptance", ErrConflict)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	request.Status = models.RequestAccepted

	s.activity.Record(donor, models.ActivityRequestAccepted,
		fmt.Sprintf("Accepted request from %s for %s", requestUserName(request), requestFoodName(request)),
		models.ActivityMetadata{
			RequestID: &request.ID,
			FoodID:    &request.FoodID,
			FoodName:  requestFoodName(request),
		}, client.IP, client.UserAgent)

	return request, nil
}

// RejectRequest resolves a pending request against the receiver and
// returns the listing to the available pool so others can claim it.
func (s *FoodService) RejectRequest(ctx context.Context, donor types.Identity, requestID uuid.UUID, client Client) (*models.Request, error) {
	request, err := s.loadOwnedRequest(ctx, donor, requestID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Request{}).
			Where("id = ? AND status = ?", requestID, models.RequestPending).
			Update("status", models.RequestRejected)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: request already resolved", ErrConflict)
		}

		// a pending request always holds the listing in requested
		if _, err := tryClaim(tx, request.FoodID, models.FoodRequested, models.FoodAvailable); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	request.Status = models.RequestRejected

	s.activity.Record(donor, models.ActivityRequestRejected,
		fmt.Sprintf("Rejected request from %s for %s", requestUserName(request), requestFoodName(request)),
		models.ActivityMetadata{
			RequestID: &request.ID,
			FoodID:    &request.FoodID,
			FoodName:  requestFoodName(request),
		}, client.IP, client.UserAgent)

	return request, nil
}

// MarkDelivered completes a reserved listing and awards the delivery
// reward. Calling it again on the same listing is a conflict, so points
// are never awarded twice.
func (s *FoodService) MarkDelivered(ctx context.Context, donor types.Identity, foodID uuid.UUID, client Client) (*models.Food, error) {
	var food models.Food
	if err := s.db.WithContext(ctx).First(&food, "id = ?", foodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: food listing", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load food listing: %w", err)
	}
	if food.DonorID != donor.UserID {
		return nil, fmt.Errorf("%w: not your listing", ErrForbidden)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := tryClaim(tx, foodID, models.FoodReserved, models.FoodDelivered)
		if err != nil {
			return err
		}
		if !claimed {
			return fmt.Errorf("%w: listing is not reserved for delivery", ErrConflict)
		}
		return tx.Model(&models.User{}).
			Where("id = ?", donor.UserID).
			UpdateColumn("points", gorm.Expr("points + ?", DeliveryReward)).Error
	})
	if err != nil {
		return nil, err
	}
	food.Status = models.FoodDelivered

	s.activity.Record(donor, models.ActivityRequestCompleted,
		fmt.Sprintf("Completed delivery of %s", food.Name),
		models.ActivityMetadata{
			FoodID:   &food.ID,
			FoodName: food.Name,
			Extra:    map[string]any{"points_earned": DeliveryReward},
		}, client.IP, client.UserAgent)

	return &food, nil
}

// AvailableFood lists claimable listings, optionally filtered by location
// and name substring.
func (s *FoodService) AvailableFood(ctx context.Context, location, search string) ([]models.Food, error) {
	query := s.db.WithContext(ctx).
		Preload("Donor").
		Where("status = ?", models.FoodAvailable)
	if location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var foods []models.Food
	if err := query.Order("created_at DESC").Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("failed to list available food: %w", err)
	}
	return foods, nil
}

// DonorPosts lists a donor's own listings, newest first.
func (s *FoodService) DonorPosts(ctx context.Context, donor types.Identity) ([]models.Food, error) {
	var foods []models.Food
	err := s.db.WithContext(ctx).
		Where("donor_id = ?", donor.UserID).
		Order("created_at DESC").
		Find(&foods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list donor posts: %w", err)
	}
	return foods, nil
}

// DonorRequests lists the requests made against a donor's listings.
func (s *FoodService) DonorRequests(ctx context.Context, donor types.Identity) ([]models.Request, error) {
	var requests []models.Request
	err := s.db.WithContext(ctx).
		Preload("Food").
		Preload("Receiver").
		Where("donor_id = ?", donor.UserID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list donor requests: %w", err)
	}
	return requests, nil
}

// ReceiverRequests lists a receiver's own claims.
func (s *FoodService) ReceiverRequests(ctx context.Context, receiver types.Identity) ([]models.Request, error) {
	var requests []models.Request
	err := s.db.WithContext(ctx).
		Preload("Food").
		Preload("Donor").
		Where("receiver_id = ?", receiver.UserID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list receiver requests: %w", err)
	}
	return requests, nil
}

// DonorStats summarizes a donor's contribution totals.
type DonorStats struct {
	Name           string `json:"name"`
	Points         int    `json:"points"`
	TotalPosts     int64  `json:"total_posts"`
	DeliveredCount int64  `json:"delivered_count"`
}

func (s *FoodService) DonorStats(ctx context.Context, donor types.Identity) (*DonorStats, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", donor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load donor: %w", err)
	}

	stats := DonorStats{Name: user.Name, Points: user.Points}
	if err := s.db.WithContext(ctx).Model(&models.Food{}).
		Where("donor_id = ?", donor.UserID).
		Count(&stats.TotalPosts).Error; err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Food{}).
		Where("donor_id = ? AND status = ?", donor.UserID, models.FoodDelivered).
		Count(&stats.DeliveredCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count deliveries: %w", err)
	}
	return &stats, nil
}

func (s *FoodService) loadOwnedFood(ctx context.Context, donor types.Identity, foodID uuid.UUID) (*models.Food, error) {
	var food models.Food
	if err := s.db.WithContext(ctx).First(&food, "id = ?", foodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: food listing", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load food listing: %w", err)
	}
	if food.DonorID != donor.UserID {
		return nil, fmt.Errorf("%w: not your listing", ErrForbidden)
	}
	return &food, nil
}

func (s *FoodService) loadOwnedRequest(ctx context.Context, donor types.Identity, requestID uuid.UUID) (*models.Request, error) {
	var request models.Request
	err := s.db.WithContext(ctx).
		Preload("Food").
		Preload("Receiver").
		First(&request, "id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if request.DonorID != donor.UserID {
		return nil, fmt.Errorf("%w: not your request to resolve", ErrForbidden)
	}
	return &request, nil
}

func requestFoodName(r *models.Request) string {
	if r.Food != nil {
		return r.Food.Name
	}
	return ""
}

func requestUserName(r *models.Request) string {
	if r.Receiver != nil {
		return r.Receiver.Name
	}
	return ""
}
