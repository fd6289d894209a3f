package testhelpers

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/types"
)

// CreateTestUser inserts a verified account and returns it.
func CreateTestUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		Location:     "Springfield",
		Verified:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestDonor inserts a verified donor.
func CreateTestDonor(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return CreateTestUser(t, db, "Test Donor", email, models.RoleDonor)
}

// CreateTestReceiver inserts a verified receiver.
func CreateTestReceiver(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return CreateTestUser(t, db, "Test Receiver", email, models.RoleReceiver)
}

// CreateTestFood inserts an available listing owned by the donor.
func CreateTestFood(t *testing.T, db *gorm.DB, donor *models.User, name string) *models.Food {
	t.Helper()

	food := &models.Food{
		Name:           name,
		Quantity:       "5 servings",
		PreparedTime:   time.Now().Add(-time.Hour),
		AvailableUntil: time.Now().Add(6 * time.Hour),
		Location:       "Springfield",
		Status:         models.FoodAvailable,
		DonorID:        donor.ID,
	}
	if err := db.Create(food).Error; err != nil {
		t.Fatalf("failed to create test food: %v", err)
	}
	return food
}

// Ident builds the caller identity for a stored user.
func Ident(u *models.User) types.Identity {
	return types.Identity{UserID: u.ID, Role: u.Role, Name: u.Name}
}
