package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a session token. The ID of the
// registered claims doubles as the server-side session key, so issued
// tokens stay revocable.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Name   string    `json:"name"`
}

// Identity converts the claims into the request-scoped identity.
func (c *TokenClaims) Identity() Identity {
	return Identity{UserID: c.UserID, Role: c.Role, Name: c.Name}
}
