package types

import (
	"github.com/google/uuid"
)

// Identity is the request-scoped caller identity resolved by the auth
// middleware and passed explicitly into every service operation. The admin
// console authenticates against a config credential pair, not a user row,
// and carries the sentinel identity below.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Name   string    `json:"name"`
}

// AdminIdentity returns the sentinel identity used by admin sessions.
func AdminIdentity() Identity {
	return Identity{UserID: uuid.Nil, Role: "admin", Name: "Admin"}
}

func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}
