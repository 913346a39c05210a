package auth

import (
	"context"

	"github.com/dmitrijs2005/accounts/internal/server/models"
)

// Principal is the verified identity bound to one request.
type Principal struct {
	UserID   int64
	UserName string
	Role     models.Role
}

// NewPrincipal builds a Principal from a stored user.
func NewPrincipal(u *models.User) *Principal {
	return &Principal{UserID: u.ID, UserName: u.UserName, Role: u.Role}
}

type principalCtxKey struct{}

// WithPrincipal returns a child context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFrom returns the principal bound to ctx, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return p, ok && p != nil
}

// Authorize reports whether p may act with the required role. Administrators
// satisfy every role; a nil principal satisfies none.
func Authorize(p *Principal, required models.Role) bool {
	if p == nil || !p.Role.Valid() {
		return false
	}
	if p.Role == models.RoleAdmin {
		return true
	}
	return p.Role == required
}
