package utils

import "time"

// Application Constants
const (
	AppName    = "Carpool"
	AppVersion = "1.0.0"

	// Response statuses
	StatusSuccess = "success"
	StatusError   = "error"

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 6
	BcryptCost         = 10

	// Shared ride defaults
	DefaultMembersCount = 2
	MinMembersCount     = 2

	// Login throttling
	MaxLoginAttempts = 5
	LoginLockoutTime = 15 * time.Minute
)

// Common error messages
const (
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized access"
	ErrForbidden        = "Access forbidden"
)
