package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must have at least 8 characters")
	ErrInvalidName        = errors.New("name must not be empty")
	ErrNoVenueAccess      = errors.New("user has no role in this venue")
	ErrUserNotFound       = errors.New("user not found")
)
