package types

import (
	"time"
)

// SignupRequest represents the request body for account registration.
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=donor receiver"`
	Location string `json:"location" binding:"required"`
}

// LoginRequest represents the request body for login. Role selects between
// the user path and the admin credential-pair path.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=donor receiver admin"`
}

// PostFoodRequest represents the request body for creating a food listing.
type PostFoodRequest struct {
	Name           string    `json:"food_name" binding:"required"`
	Quantity       string    `json:"quantity" binding:"required"`
	PreparedTime   time.Time `json:"prepared_time" binding:"required"`
	AvailableUntil time.Time `json:"available_until" binding:"required"`
	Location       string    `json:"location" binding:"required"`
}

// UpdateFoodRequest represents the request body for editing a listing.
// Zero-value fields are left unchanged.
type UpdateFoodRequest struct {
	Name           string     `json:"food_name"`
	Quantity       string     `json:"quantity"`
	PreparedTime   *time.Time `json:"prepared_time"`
	AvailableUntil *time.Time `json:"available_until"`
	Location       string     `json:"location"`
}

// ContactRequest represents a visitor contact-form submission.
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}
