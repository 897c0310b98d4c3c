// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/rsprolipsi/compplan/internal/models"
)

// ErrNotFound is returned when a document, PIN level or user does not exist.
var ErrNotFound = errors.New("not found")

// DocumentStore keeps the configuration documents as opaque JSON. Writes
// replace the whole document; the last write wins.
type DocumentStore interface {
	// GetDocument returns the stored body of key, or ErrNotFound.
	GetDocument(ctx context.Context, key models.DocumentKey) ([]byte, error)

	// PutDocument replaces the body of key.
	PutDocument(ctx context.Context, key models.DocumentKey, body []byte) error
}

// PinLevelStore keeps the Career Plan ladder, one row per PIN.
type PinLevelStore interface {
	// ListPinLevels returns all PINs ordered by required cycles.
	ListPinLevels(ctx context.Context) ([]models.PinLevel, error)

	// GetPinLevel returns one PIN, or ErrNotFound.
	GetPinLevel(ctx context.Context, id string) (*models.PinLevel, error)

	// CreatePinLevel inserts a PIN. The level.ID field will be populated by
	// the store.
	CreatePinLevel(ctx context.Context, level *models.PinLevel) error

	// UpdatePinLevel replaces an existing PIN. Returns ErrNotFound if it does
	// not exist.
	UpdatePinLevel(ctx context.Context, level *models.PinLevel) error

	// DeletePinLevel removes a PIN. Returns ErrNotFound if it does not exist.
	DeletePinLevel(ctx context.Context, id string) error
}

// UserStore keeps admin accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	DocumentStore
	PinLevelStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
