package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsprolipsi/compplan/internal/models"
	"github.com/rsprolipsi/compplan/internal/storage"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = u
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret-test-secret-test-sec", time.Hour)
	user := models.NewUser("finance@example.com", "Finance", "", models.RoleFinance)

	token, err := manager.Generate(user)
	require.NoError(t, err)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleFinance, claims.Role)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("another-secret-another-secret-an", time.Hour)
		_, err := other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager("test-secret-test-secret-test-sec", -time.Minute)
		old, err := expired.Generate(user)
		require.NoError(t, err)
		_, err = manager.Validate(old)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemoryUsers())

	user, err := a.Register(ctx, "admin@example.com", "Admin", "correct horse", models.RoleAdmin)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	t.Run("authenticate", func(t *testing.T) {
		got, err := a.Authenticate(ctx, "admin@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "admin@example.com", "battery staple")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "ghost@example.com", "correct horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := a.Register(ctx, "admin@example.com", "Admin", "correct horse", models.RoleAdmin)
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := a.Register(ctx, "short@example.com", "Short", "1234", models.RoleViewer)
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := a.Register(ctx, "owner@example.com", "Owner", "correct horse", models.Role("owner"))
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("EnsureUser is idempotent", func(t *testing.T) {
		got, created, err := a.EnsureUser(ctx, "admin@example.com", "Admin", "correct horse", models.RoleAdmin)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, user.ID, got.ID)
	})
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		role     models.Role
		view     bool
		edit     bool
		manage   bool
		numPerms int
	}{
		{role: models.RoleAdmin, view: true, edit: true, manage: true, numPerms: 3},
		{role: models.RoleFinance, view: true, edit: true, numPerms: 2},
		{role: models.RoleViewer, view: true, numPerms: 1},
		{role: models.Role("unknown")},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			c := NewCapabilities("u1", "u1@example.com", tt.role)
			assert.Equal(t, tt.view, c.Can(PermViewCompensation))
			assert.Equal(t, tt.edit, c.Can(PermEditCompensation))
			assert.Equal(t, tt.manage, c.Can(PermManageUsers))
			assert.Len(t, c.Permissions(), tt.numPerms)
		})
	}
}

func TestRequire(t *testing.T) {
	_, err := Require(context.Background(), PermViewCompensation)
	assert.ErrorIs(t, err, ErrMissingToken)

	ctx := WithCapabilities(context.Background(), NewCapabilities("u1", "", models.RoleViewer))
	_, err = Require(ctx, PermViewCompensation)
	assert.NoError(t, err)

	_, err = Require(ctx, PermEditCompensation)
	assert.True(t, errors.Is(err, ErrForbidden))
}
