package auth

import (
	"context"

	"github.com/rsprolipsi/compplan/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// The service layer only depends on this, so the credential scheme can change
// without touching the RPC handlers.
type Authenticator interface {
	// Register creates a new admin account with the given role.
	Register(ctx context.Context, email, displayName, credential string, role models.Role) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
