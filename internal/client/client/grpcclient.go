package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/accounts/internal/common"
	pb "github.com/dmitrijs2005/accounts/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.AccountServiceClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	key := "authorization"
	md.Delete(key)
	if token != "" {
		md.Set(key, common.BearerScheme+" "+token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

// noRetry lists methods that never trigger a token refresh.
var noRetry = map[string]bool{
	pb.AccountService_Refresh_FullMethodName: true,
	pb.AccountService_SignIn_FullMethodName:  true,
	pb.AccountService_SignUp_FullMethodName:  true,
	pb.AccountService_Ping_FullMethodName:    true,
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.Tokens()
	ctx = withAccessToken(ctx, access)

	err := invoker(ctx, method, req, reply, cc, opts...)

	if err == nil || noRetry[method] || refresh == "" {
		return err
	}

	if status.Code(err) != codes.Unauthenticated {
		return err
	}

	resp, rerr := s.client.Refresh(ctx, &pb.RefreshRequest{RefreshToken: refresh})
	if rerr != nil {
		return err
	}

	s.SetTokens(resp.AccessToken, resp.RefreshToken)

	// tokens refreshed, retrying with the new access token
	ctx = withAccessToken(ctx, resp.AccessToken)
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewAccountsClient connects to the account service at endpointURL.
// Extra dial options are appended to the defaults.
func NewAccountsClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient(opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAccountServiceClient(conn)
	return nil
}

func (s *GRPCClient) Tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, username, password string) (*pb.User, error) {

	u, err := s.client.SignUp(ctx, &pb.SignUpRequest{Username: username, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	return u, nil
}

// SignIn authenticates and keeps the issued tokens for later calls.
func (s *GRPCClient) SignIn(ctx context.Context, username, password string) error {

	resp, err := s.client.SignIn(ctx, &pb.SignInRequest{Username: username, Password: password})
	if err != nil {
		return s.mapError(err)
	}

	s.SetTokens(resp.AccessToken, resp.RefreshToken)

	return nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (s *GRPCClient) Refresh(ctx context.Context) error {
	_, refresh := s.Tokens()
	if refresh == "" {
		return ErrUnauthorized
	}

	resp, err := s.client.Refresh(ctx, &pb.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		return s.mapError(err)
	}

	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) GetUser(ctx context.Context, id int64) (*pb.User, error) {
	u, err := s.client.GetUser(ctx, &pb.GetUserRequest{Id: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return u, nil
}

func (s *GRPCClient) ListUsers(ctx context.Context) ([]*pb.User, error) {
	resp, err := s.client.ListUsers(ctx, &pb.ListUsersRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Users, nil
}

func (s *GRPCClient) CreateUser(ctx context.Context, username, password, role string) (*pb.User, error) {
	u, err := s.client.CreateUser(ctx, &pb.CreateUserRequest{Username: username, Password: password, Role: role})
	if err != nil {
		return nil, s.mapError(err)
	}
	return u, nil
}

func (s *GRPCClient) UpdateUser(ctx context.Context, req *pb.UpdateUserRequest) (*pb.User, error) {
	u, err := s.client.UpdateUser(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return u, nil
}

func (s *GRPCClient) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.client.DeleteUser(ctx, &pb.DeleteUserRequest{Id: id}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.NotFound:
		return common.ErrUserNotFound
	case codes.AlreadyExists:
		return common.ErrDuplicateUsername
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

var _ Client = (*GRPCClient)(nil)
