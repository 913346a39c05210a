package grpc

import (
	"context"

	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

var (
	adminPrincipal = &auth.Principal{UserID: 1, UserName: "admin", Role: models.RoleAdmin}
	userPrincipal  = &auth.Principal{UserID: 2, UserName: "alice", Role: models.RoleUser}
)

type fakeAuth struct {
	signUp  func(ctx context.Context, u, p string) (*models.User, error)
	signIn  func(ctx context.Context, u, p string) (*auth.TokenPair, error)
	refresh func(ctx context.Context, t string) (*auth.TokenPair, error)

	lastToken string
}

func (f *fakeAuth) SignUp(ctx context.Context, u, p string) (*models.User, error) {
	return f.signUp(ctx, u, p)
}

func (f *fakeAuth) SignIn(ctx context.Context, u, p string) (*auth.TokenPair, error) {
	return f.signIn(ctx, u, p)
}

func (f *fakeAuth) Refresh(ctx context.Context, t string) (*auth.TokenPair, error) {
	return f.refresh(ctx, t)
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*auth.Principal, bool) {
	f.lastToken = token
	switch token {
	case "admin-token":
		return adminPrincipal, true
	case "user-token":
		return userPrincipal, true
	default:
		return nil, false
	}
}

type fakeUsers struct {
	create func(ctx context.Context, u, p string, role models.Role) (*models.User, error)
	get    func(ctx context.Context, id int64) (*models.User, error)
	list   func(ctx context.Context) ([]*models.User, error)
	update func(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	del    func(ctx context.Context, id int64) error
}

func (f *fakeUsers) Create(ctx context.Context, u, p string, role models.Role) (*models.User, error) {
	return f.create(ctx, u, p, role)
}
func (f *fakeUsers) Get(ctx context.Context, id int64) (*models.User, error) { return f.get(ctx, id) }
func (f *fakeUsers) List(ctx context.Context) ([]*models.User, error)        { return f.list(ctx) }
func (f *fakeUsers) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	return f.update(ctx, id, upd)
}
func (f *fakeUsers) Delete(ctx context.Context, id int64) error { return f.del(ctx, id) }
