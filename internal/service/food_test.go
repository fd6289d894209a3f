package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/service"
	"github.com/foodbridge/backend/internal/testhelpers"
	"github.com/foodbridge/backend/internal/types"
)

var noClient = service.Client{IP: "127.0.0.1", UserAgent: "test"}

func setupFoodTest(t *testing.T) (*gorm.DB, *service.FoodService) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	log := testhelpers.SilentLogger()
	activity := service.NewActivityService(db, log)
	return db, service.NewFoodService(db, activity, log)
}

func TestPostFood(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")

	food, err := svc.PostFood(context.Background(), testhelpers.Ident(donor), types.PostFoodRequest{
		Name:           "Vegetable Curry",
		Quantity:       "10 servings",
		PreparedTime:   time.Now().Add(-time.Hour),
		AvailableUntil: time.Now().Add(4 * time.Hour),
		Location:       "Downtown",
	}, noClient)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, food.ID)
	assert.Equal(t, models.FoodAvailable, food.Status)
	assert.Equal(t, donor.ID, food.DonorID)
}

func TestPostFoodRejectsInvertedTimes(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")

	_, err := svc.PostFood(context.Background(), testhelpers.Ident(donor), types.PostFoodRequest{
		Name:           "Soup",
		Quantity:       "2 liters",
		PreparedTime:   time.Now(),
		AvailableUntil: time.Now().Add(-time.Hour),
		Location:       "Downtown",
	}, noClient)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestUpdateFoodOnlyWhileAvailable(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Bread")

	updated, err := svc.UpdateFood(context.Background(), testhelpers.Ident(donor), food.ID, types.UpdateFoodRequest{
		Name: "Sourdough Bread",
	}, noClient)
	require.NoError(t, err)
	assert.Equal(t, "Sourdough Bread", updated.Name)

	require.NoError(t, db.Model(&models.Food{}).Where("id = ?", food.ID).
		Update("status", models.FoodRequested).Error)

	_, err = svc.UpdateFood(context.Background(), testhelpers.Ident(donor), food.ID, types.UpdateFoodRequest{
		Name: "Rye Bread",
	}, noClient)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestUpdateFoodOwnershipEnforced(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	other := testhelpers.CreateTestDonor(t, db, "other@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Bread")

	_, err := svc.UpdateFood(context.Background(), testhelpers.Ident(other), food.ID, types.UpdateFoodRequest{
		Name: "Stolen Bread",
	}, noClient)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestDeleteFoodOnlyWhileAvailable(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Bread")

	require.NoError(t, db.Model(&models.Food{}).Where("id = ?", food.ID).
		Update("status", models.FoodReserved).Error)
	err := svc.DeleteFood(context.Background(), testhelpers.Ident(donor), food.ID, noClient)
	assert.ErrorIs(t, err, service.ErrConflict)

	require.NoError(t, db.Model(&models.Food{}).Where("id = ?", food.ID).
		Update("status", models.FoodAvailable).Error)
	require.NoError(t, svc.DeleteFood(context.Background(), testhelpers.Ident(donor), food.ID, noClient))

	var count int64
	require.NoError(t, db.Model(&models.Food{}).Where("id = ?", food.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRequestFood(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	request, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, request.Status)
	assert.Equal(t, donor.ID, request.DonorID)

	var reloaded models.Food
	require.NoError(t, db.First(&reloaded, "id = ?", food.ID).Error)
	assert.Equal(t, models.FoodRequested, reloaded.Status)
}

func TestRequestFoodNotFound(t *testing.T) {
	db, svc := setupFoodTest(t)
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")

	_, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), uuid.New(), noClient)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRequestFoodAlreadyClaimed(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	first := testhelpers.CreateTestReceiver(t, db, "first@example.com")
	second := testhelpers.CreateTestReceiver(t, db, "second@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	_, err := svc.RequestFood(context.Background(), testhelpers.Ident(first), food.ID, noClient)
	require.NoError(t, err)

	_, err = svc.RequestFood(context.Background(), testhelpers.Ident(second), food.ID, noClient)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestRequestFoodDuplicateByReceiver(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	request, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	require.NoError(t, err)

	// rejection frees the listing but a receiver never gets a second claim
	_, err = svc.RejectRequest(context.Background(), testhelpers.Ident(donor), request.ID, noClient)
	require.NoError(t, err)

	_, err = svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestRequestFoodConcurrentSingleWinner(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	const receivers = 8
	idents := make([]types.Identity, receivers)
	for i := range idents {
		user := testhelpers.CreateTestReceiver(t, db, fmt.Sprintf("receiver%d@example.com", i))
		idents[i] = testhelpers.Ident(user)
	}

	var wg sync.WaitGroup
	errs := make([]error, receivers)
	for i := range idents {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RequestFood(context.Background(), idents[i], food.ID, noClient)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, service.ErrConflict)
		}
	}
	assert.Equal(t, 1, winners)

	var pending int64
	require.NoError(t, db.Model(&models.Request{}).
		Where("food_id = ?", food.ID).Count(&pending).Error)
	assert.Equal(t, int64(1), pending)
}

func TestAcceptRequest(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	request, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	require.NoError(t, err)

	accepted, err := svc.AcceptRequest(context.Background(), testhelpers.Ident(donor), request.ID, noClient)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, accepted.Status)

	var reloaded models.Food
	require.NoError(t, db.First(&reloaded, "id = ?", food.ID).Error)
	assert.Equal(t, models.FoodReserved, reloaded.Status)
}

func TestAcceptRequestTwice(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	request, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	require.NoError(t, err)

	_, err = svc.AcceptRequest(context.Background(), testhelpers.Ident(donor), request.ID, noClient)
	require.NoError(t, err)

	_, err = svc.AcceptRequest(context.Background(), testhelpers.Ident(donor), request.ID, noClient)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestAcceptRequestOwnershipEnforced(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	other := testhelpers.CreateTestDonor(t, db, "other@example.com")
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	request, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	require.NoError(t, err)

	_, err = svc.AcceptRequest(context.Background(), testhelpers.Ident(other), request.ID, noClient)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// nothing moved
	var reloaded models.Request
	require.NoError(t, db.First(&reloaded, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestPending, reloaded.Status)
}

func TestRejectRequestRestoresAvailability(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")
	other := testhelpers.CreateTestReceiver(t, db, "other@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	request, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	require.NoError(t, err)

	rejected, err := svc.RejectRequest(context.Background(), testhelpers.Ident(donor), request.ID, noClient)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)

	var reloaded models.Food
	require.NoError(t, db.First(&reloaded, "id = ?", food.ID).Error)
	assert.Equal(t, models.FoodAvailable, reloaded.Status)

	// a different receiver can now claim it
	_, err = svc.RequestFood(context.Background(), testhelpers.Ident(other), food.ID, noClient)
	assert.NoError(t, err)
}

func TestRejectResolvedRequest(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	request, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(context.Background(), testhelpers.Ident(donor), request.ID, noClient)
	require.NoError(t, err)

	_, err = svc.RejectRequest(context.Background(), testhelpers.Ident(donor), request.ID, noClient)
	assert.ErrorIs(t, err, service.ErrConflict)

	var reloaded models.Food
	require.NoError(t, db.First(&reloaded, "id = ?", food.ID).Error)
	assert.Equal(t, models.FoodReserved, reloaded.Status)
}

func TestMarkDeliveredAwardsPointsOnce(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	request, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(context.Background(), testhelpers.Ident(donor), request.ID, noClient)
	require.NoError(t, err)

	delivered, err := svc.MarkDelivered(context.Background(), testhelpers.Ident(donor), food.ID, noClient)
	require.NoError(t, err)
	assert.Equal(t, models.FoodDelivered, delivered.Status)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", donor.ID).Error)
	assert.Equal(t, service.DeliveryReward, user.Points)

	// a second call conflicts and never double-awards
	_, err = svc.MarkDelivered(context.Background(), testhelpers.Ident(donor), food.ID, noClient)
	assert.ErrorIs(t, err, service.ErrConflict)

	require.NoError(t, db.First(&user, "id = ?", donor.ID).Error)
	assert.Equal(t, service.DeliveryReward, user.Points)
}

func TestMarkDeliveredRequiresReserved(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	_, err := svc.MarkDelivered(context.Background(), testhelpers.Ident(donor), food.ID, noClient)
	assert.ErrorIs(t, err, service.ErrConflict)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", donor.ID).Error)
	assert.Zero(t, user.Points)
}

func TestFullLifecycle(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")

	food, err := svc.PostFood(context.Background(), testhelpers.Ident(donor), types.PostFoodRequest{
		Name:           "Lasagna",
		Quantity:       "8 portions",
		PreparedTime:   time.Now().Add(-30 * time.Minute),
		AvailableUntil: time.Now().Add(3 * time.Hour),
		Location:       "East Side",
	}, noClient)
	require.NoError(t, err)

	request, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(context.Background(), testhelpers.Ident(donor), request.ID, noClient)
	require.NoError(t, err)
	delivered, err := svc.MarkDelivered(context.Background(), testhelpers.Ident(donor), food.ID, noClient)
	require.NoError(t, err)
	assert.Equal(t, models.FoodDelivered, delivered.Status)

	stats, err := svc.DonorStats(context.Background(), testhelpers.Ident(donor))
	require.NoError(t, err)
	assert.Equal(t, service.DeliveryReward, stats.Points)
	assert.Equal(t, int64(1), stats.TotalPosts)
	assert.Equal(t, int64(1), stats.DeliveredCount)
}

func TestAvailableFoodFilters(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")

	apples := testhelpers.CreateTestFood(t, db, donor, "Apples")
	require.NoError(t, db.Model(apples).Update("location", "North Market").Error)
	testhelpers.CreateTestFood(t, db, donor, "Bananas")

	claimed := testhelpers.CreateTestFood(t, db, donor, "Apple Pie")
	require.NoError(t, db.Model(claimed).Update("status", models.FoodRequested).Error)

	foods, err := svc.AvailableFood(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, foods, 2)

	foods, err = svc.AvailableFood(context.Background(), "north", "")
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Apples", foods[0].Name)

	foods, err = svc.AvailableFood(context.Background(), "", "apple")
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Apples", foods[0].Name)
}

func TestDonorAndReceiverListings(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	receiver := testhelpers.CreateTestReceiver(t, db, "receiver@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	_, err := svc.RequestFood(context.Background(), testhelpers.Ident(receiver), food.ID, noClient)
	require.NoError(t, err)

	posts, err := svc.DonorPosts(context.Background(), testhelpers.Ident(donor))
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	incoming, err := svc.DonorRequests(context.Background(), testhelpers.Ident(donor))
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	require.NotNil(t, incoming[0].Food)
	assert.Equal(t, "Rice", incoming[0].Food.Name)

	mine, err := svc.ReceiverRequests(context.Background(), testhelpers.Ident(receiver))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.RequestPending, mine[0].Status)
}

func TestSetPhoto(t *testing.T) {
	db, svc := setupFoodTest(t)
	donor := testhelpers.CreateTestDonor(t, db, "donor@example.com")
	other := testhelpers.CreateTestDonor(t, db, "other@example.com")
	food := testhelpers.CreateTestFood(t, db, donor, "Rice")

	_, err := svc.SetPhoto(context.Background(), testhelpers.Ident(other), food.ID, "https://example.com/x.jpg")
	assert.ErrorIs(t, err, service.ErrForbidden)

	updated, err := svc.SetPhoto(context.Background(), testhelpers.Ident(donor), food.ID, "https://example.com/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x.jpg", updated.PhotoURL)
}
