package service

import "errors"

// Domain error kinds. Handlers map these onto HTTP statuses; anything else
// coming out of a service is treated as a server error and never leaked raw.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a state precondition was violated, e.g. claiming a
	// listing that is no longer available or re-claiming one already claimed.
	ErrConflict = errors.New("conflict")
	// ErrForbidden means a role or ownership check failed.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by login on any credential mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotVerified is returned when an unverified account attempts to log in.
	ErrNotVerified = errors.New("account not verified")
	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("validation failed")
)
