package auth

import (
	"context"

	"github.com/fekuna/storefront-service/internal/model"
)

type contextKey struct{}

type UserContext struct {
	UserID string
	Email  string
	Role   string
}

// IsEndUser reports whether the caller is a shopper rather than staff.
func (u *UserContext) IsEndUser() bool {
	return u != nil && u.Role == model.RoleUser
}

func (u *UserContext) IsAdmin() bool {
	return u != nil && HasRole(u.Role, model.RoleAdmin)
}

func WithUser(ctx context.Context, u *UserContext) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the authenticated caller, or nil for anonymous requests.
func FromContext(ctx context.Context) *UserContext {
	if u, ok := ctx.Value(contextKey{}).(*UserContext); ok {
		return u
	}
	return nil
}

// GetUserID returns the caller's id or "" when anonymous.
func GetUserID(ctx context.Context) string {
	if u := FromContext(ctx); u != nil {
		return u.UserID
	}
	return ""
}
