package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level of an admin user.
type Role string

const (
	// RoleAdmin can do everything, including managing users.
	RoleAdmin Role = "admin"
	// RoleFinance can view and edit the compensation settings.
	RoleFinance Role = "finance"
	// RoleViewer can only view the compensation settings.
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFinance, RoleViewer:
		return true
	}
	return false
}

// User represents an admin panel account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// DisplayName is shown in the panel header.
	DisplayName string

	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string

	// Role decides which settings the user may change.
	Role Role

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string, role Role) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
