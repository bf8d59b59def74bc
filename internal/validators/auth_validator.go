package validators

import (
	"errors"

	"carpool/internal/utils"
)

var (
	ErrNamePasswordRequired = errors.New("name and password are required")
	ErrContactRequired      = errors.New("email or phone is required")
	ErrCredentialsRequired  = errors.New("email/phone and password are required")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrPasswordTooShort     = errors.New("password is too short")
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *SignupRequest) Validate() error {
	if r.Name == "" || r.Password == "" {
		return ErrNamePasswordRequired
	}
	if r.Email == "" && r.Phone == "" {
		return ErrContactRequired
	}
	if r.Email != "" && !utils.IsValidEmail(r.Email) {
		return ErrInvalidEmail
	}
	if len(r.Password) < utils.PasswordMinLength {
		return ErrPasswordTooShort
	}
	return nil
}

type LoginRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.EmailOrPhone == "" || r.Password == "" {
		return ErrCredentialsRequired
	}
	return nil
}

// UpdateProfileRequest covers the self-service profile fields. The
// password hash is never writable through this path.
type UpdateProfileRequest struct {
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	IDVerification *IDVerificationInput `json:"idVerification"`
}

type IDVerificationInput struct {
	AadharNumber   string `json:"aadharNumber"`
	AadharDocument string `json:"aadharDocument"`
	PANNumber      string `json:"panNumber"`
	PANDocument    string `json:"panDocument"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Email != "" && !utils.IsValidEmail(r.Email) {
		return ErrInvalidEmail
	}
	return nil
}
