package domain

import (
	"errors"
	"time"
)

// Role classifies an identity for conversation routing.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

var ErrUserNotFound = errors.New("user not found")
var ErrInvalidRole = errors.New("invalid role")

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleEmployee || r == RoleCustomer || r == RoleAdmin
}

// User models a chat identity. The normalized phone number is the sole
// natural key: exactly one user exists per phone.
type User struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	Phone      string     `json:"phone" bson:"phone"`
	Name       string     `json:"name,omitempty" bson:"name,omitempty"`
	Email      string     `json:"email,omitempty" bson:"email,omitempty"`
	Role       Role       `json:"role" bson:"role"`
	Verified   bool       `json:"verified" bson:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty" bson:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

// NewTransientUser builds an in-memory identity used when the user store is
// unreachable. It is never persisted; the conversation proceeds in degraded
// mode for the current event only.
func NewTransientUser(phone string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        "mem:" + phone,
		Phone:     phone,
		Role:      RoleCustomer,
		Verified:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
