package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/logging"
	pb "github.com/dmitrijs2005/accounts/internal/proto"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

func startBufServer(t *testing.T, a *fakeAuth, u *fakeUsers) pb.AccountServiceClient {
	t.Helper()

	lis := bufconn.Listen(bufSize)
	s := newTestServer(a, u)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
	})

	return pb.NewAccountServiceClient(conn)
}

func bearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestServer_PingAndSignIn(t *testing.T) {
	a := &fakeAuth{signIn: func(ctx context.Context, u, p string) (*auth.TokenPair, error) {
		if u == "alice" && p == "Passw0rd1" {
			return &auth.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
		}
		return nil, common.ErrInvalidCredentials
	}}
	c := startBufServer(t, a, nil)
	ctx := context.Background()

	pong, err := c.Ping(ctx, &pb.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", pong.Status)

	tokens, err := c.SignIn(ctx, &pb.SignInRequest{Username: "alice", Password: "Passw0rd1"})
	require.NoError(t, err)
	assert.Equal(t, "a", tokens.AccessToken)
	assert.Equal(t, "r", tokens.RefreshToken)

	_, err = c.SignIn(ctx, &pb.SignInRequest{Username: "alice", Password: "bad"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.SignIn(ctx, &pb.SignInRequest{Username: "alice"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_SignUp(t *testing.T) {
	a := &fakeAuth{signUp: func(ctx context.Context, u, p string) (*models.User, error) {
		if u == "taken" {
			return nil, common.ErrDuplicateUsername
		}
		return &models.User{ID: 3, UserName: u, Role: models.RoleUser}, nil
	}}
	c := startBufServer(t, a, nil)
	ctx := context.Background()

	u, err := c.SignUp(ctx, &pb.SignUpRequest{Username: "bob", Password: "Passw0rd1"})
	require.NoError(t, err)
	assert.Equal(t, &pb.User{Id: 3, Username: "bob", Role: "user"}, u)

	_, err = c.SignUp(ctx, &pb.SignUpRequest{Username: "taken", Password: "Passw0rd1"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = c.SignUp(ctx, &pb.SignUpRequest{Username: "b", Password: "Passw0rd1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_Refresh(t *testing.T) {
	a := &fakeAuth{refresh: func(ctx context.Context, tok string) (*auth.TokenPair, error) {
		switch tok {
		case "good":
			return &auth.TokenPair{AccessToken: "new", RefreshToken: "good"}, nil
		case "orphan":
			return nil, common.ErrUserNotFound
		default:
			return nil, common.ErrTokenExpired
		}
	}}
	c := startBufServer(t, a, nil)
	ctx := context.Background()

	tokens, err := c.Refresh(ctx, &pb.RefreshRequest{RefreshToken: "good"})
	require.NoError(t, err)
	assert.Equal(t, "good", tokens.RefreshToken)

	_, err = c.Refresh(ctx, &pb.RefreshRequest{RefreshToken: "old"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrTokenExpired.Error(), status.Convert(err).Message())

	_, err = c.Refresh(ctx, &pb.RefreshRequest{RefreshToken: "orphan"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.Refresh(ctx, &pb.RefreshRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_UserAdministration(t *testing.T) {
	store := map[int64]*models.User{
		1: {ID: 1, UserName: "admin", Role: models.RoleAdmin},
		2: {ID: 2, UserName: "alice", Role: models.RoleUser},
	}
	u := &fakeUsers{
		get: func(ctx context.Context, id int64) (*models.User, error) {
			if v, ok := store[id]; ok {
				return v, nil
			}
			return nil, common.ErrUserNotFound
		},
		list: func(ctx context.Context) ([]*models.User, error) {
			return []*models.User{store[1], store[2]}, nil
		},
		create: func(ctx context.Context, name, p string, role models.Role) (*models.User, error) {
			nu := &models.User{ID: 3, UserName: name, Role: role}
			store[3] = nu
			return nu, nil
		},
		update: func(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
			v, ok := store[id]
			if !ok {
				return nil, common.ErrUserNotFound
			}
			if upd.Role != nil {
				v.Role = *upd.Role
			}
			return v, nil
		},
		del: func(ctx context.Context, id int64) error {
			if _, ok := store[id]; !ok {
				return common.ErrUserNotFound
			}
			delete(store, id)
			return nil
		},
	}
	c := startBufServer(t, nil, u)
	admin := bearer(context.Background(), "admin-token")
	user := bearer(context.Background(), "user-token")

	got, err := c.GetUser(user, &pb.GetUserRequest{Id: 1})
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	_, err = c.GetUser(context.Background(), &pb.GetUserRequest{Id: 1})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.GetUser(user, &pb.GetUserRequest{Id: 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	list, err := c.ListUsers(admin, &pb.ListUsersRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Users, 2)

	_, err = c.ListUsers(user, &pb.ListUsersRequest{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	created, err := c.CreateUser(admin, &pb.CreateUserRequest{Username: "carol", Password: "Passw0rd1"})
	require.NoError(t, err)
	assert.Equal(t, "user", created.Role)

	_, err = c.CreateUser(admin, &pb.CreateUserRequest{Username: "dave", Password: "Passw0rd1", Role: "root"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	role := "admin"
	updated, err := c.UpdateUser(admin, &pb.UpdateUserRequest{Id: 3, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)

	del, err := c.DeleteUser(admin, &pb.DeleteUserRequest{Id: 3})
	require.NoError(t, err)
	assert.Equal(t, "deleted", del.Message)

	_, err = c.UpdateUser(admin, &pb.UpdateUserRequest{Id: 3, Role: &role})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.DeleteUser(user, &pb.DeleteUserRequest{Id: 2})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Contains(t, store, int64(2))
}

func TestServer_InternalErrorsAreMasked(t *testing.T) {
	u := &fakeUsers{list: func(ctx context.Context) ([]*models.User, error) { return nil, errBoom{} }}
	c := startBufServer(t, nil, u)

	_, err := c.ListUsers(bearer(context.Background(), "admin-token"), &pb.ListUsersRequest{})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, common.ErrorInternal.Error(), status.Convert(err).Message())
}

func TestRun_InvalidAddress(t *testing.T) {
	s, err := NewGRPCServer("127.0.0.1:99999", logging.Nop(), &fakeAuth{}, &fakeUsers{})
	require.NoError(t, err)

	assert.Error(t, s.Run(context.Background()))
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, err := NewGRPCServer("127.0.0.1:0", logging.Nop(), &fakeAuth{}, &fakeUsers{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
