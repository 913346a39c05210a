// Package grpc exposes the account services over gRPC using the JSON codec
// registered by the proto package.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/accounts/internal/logging"
	pb "github.com/dmitrijs2005/accounts/internal/proto"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"google.golang.org/grpc"
)

// AuthService is the authentication surface the gRPC API depends on.
type AuthService interface {
	SignUp(ctx context.Context, userName, password string) (*models.User, error)
	SignIn(ctx context.Context, userName, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Authenticate(ctx context.Context, token string) (*auth.Principal, bool)
}

// UserService is the user administration surface the gRPC API depends on.
type UserService interface {
	Create(ctx context.Context, userName, password string, role models.Role) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type GRPCServer struct {
	pb.UnimplementedAccountServiceServer
	address string
	auth    AuthService
	users   UserService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as AuthService, us UserService) (*GRPCServer, error) {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    as,
		users:   us,
	}, nil
}

// NewServer builds a grpc.Server with the authentication interceptor and the
// account service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(s.authInterceptor)}, opts...)
	srv := grpc.NewServer(opts...)
	pb.RegisterAccountServiceServer(srv, s)
	return srv
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}
