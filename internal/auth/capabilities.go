package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rsprolipsi/compplan/internal/models"
)

// ErrForbidden is returned when the caller lacks a permission.
var ErrForbidden = errors.New("permission denied")

// Permission is a single thing a caller may do.
type Permission string

const (
	PermViewCompensation Permission = "compensation:view"
	PermEditCompensation Permission = "compensation:edit"
	PermManageUsers      Permission = "users:manage"
)

var rolePermissions = map[models.Role][]Permission{
	models.RoleAdmin:   {PermViewCompensation, PermEditCompensation, PermManageUsers},
	models.RoleFinance: {PermViewCompensation, PermEditCompensation},
	models.RoleViewer:  {PermViewCompensation},
}

// Capabilities is the authorization context of one caller. It is built once
// from a validated token and passed down through context.Context.
type Capabilities struct {
	UserID string
	Email  string
	Role   models.Role
	perms  map[Permission]bool
}

// NewCapabilities derives the permissions of role.
func NewCapabilities(userID, email string, role models.Role) Capabilities {
	perms := make(map[Permission]bool)
	for _, p := range rolePermissions[role] {
		perms[p] = true
	}
	return Capabilities{UserID: userID, Email: email, Role: role, perms: perms}
}

// FromClaims builds the capabilities carried by a validated token.
func FromClaims(c *Claims) Capabilities {
	return NewCapabilities(c.UserID, c.Email, c.Role)
}

// Can reports whether the caller holds p.
func (c Capabilities) Can(p Permission) bool {
	return c.perms[p]
}

// Permissions lists the caller's permissions in a stable order.
func (c Capabilities) Permissions() []Permission {
	var out []Permission
	for _, p := range []Permission{PermViewCompensation, PermEditCompensation, PermManageUsers} {
		if c.perms[p] {
			out = append(out, p)
		}
	}
	return out
}

type capabilitiesKey struct{}

// WithCapabilities returns a context carrying c.
func WithCapabilities(ctx context.Context, c Capabilities) context.Context {
	return context.WithValue(ctx, capabilitiesKey{}, c)
}

// FromContext returns the capabilities stored in ctx, if any.
func FromContext(ctx context.Context) (Capabilities, bool) {
	c, ok := ctx.Value(capabilitiesKey{}).(Capabilities)
	return c, ok
}

// Require checks that ctx carries p. It returns ErrMissingToken for
// anonymous callers and ErrForbidden for authenticated callers without p.
func Require(ctx context.Context, p Permission) (Capabilities, error) {
	c, ok := FromContext(ctx)
	if !ok {
		return Capabilities{}, ErrMissingToken
	}
	if !c.Can(p) {
		return c, fmt.Errorf("%w: %s requires %s", ErrForbidden, c.Role, p)
	}
	return c, nil
}
