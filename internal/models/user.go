package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleRider UserRole = "rider"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email          string             `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Phone          string             `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash   string             `json:"-" bson:"password_hash"`
	Role           UserRole           `json:"role" bson:"role" default:"rider"`
	IDVerification IDVerification     `json:"id_verification" bson:"id_verification"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// IDVerification holds references to identity documents uploaded by the
// user. Documents are opaque URLs produced elsewhere; this service only
// stores them.
type IDVerification struct {
	Aadhar   IDDocument `json:"aadhar" bson:"aadhar"`
	PANCard  IDDocument `json:"pan_card" bson:"pan_card"`
	Verified bool       `json:"verified" bson:"verified" default:"false"`
}

type IDDocument struct {
	Number   string `json:"number,omitempty" bson:"number,omitempty"`
	Document string `json:"document,omitempty" bson:"document,omitempty"`
}

// UserSummary is the projection of a user embedded in ride and chatroom
// responses.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email,omitempty"`
	Phone string             `json:"phone,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
