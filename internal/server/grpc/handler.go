package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/accounts/internal/proto"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toUser(u *models.User) *pb.User {
	return &pb.User{Id: u.ID, Username: u.UserName, Role: string(u.Role)}
}

func toTokens(p *auth.TokenPair) *pb.TokenResponse {
	return &pb.TokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

// fail logs unmapped errors and converts err to a status.
func (s *GRPCServer) fail(ctx context.Context, msg string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, msg, "error", err)
	}
	return st
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {

	return &pb.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) SignUp(ctx context.Context, req *pb.SignUpRequest) (*pb.User, error) {
	if err := validateSignUp(req); err != nil {
		return nil, toStatus(err)
	}

	u, err := s.auth.SignUp(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "sign up failed", err)
	}

	return toUser(u), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *pb.SignInRequest) (*pb.TokenResponse, error) {
	if err := validateSignIn(req); err != nil {
		return nil, toStatus(err)
	}

	tokens, err := s.auth.SignIn(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "sign in failed", err)
	}

	return toTokens(tokens), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *pb.RefreshRequest) (*pb.TokenResponse, error) {
	if err := validateRefresh(req); err != nil {
		return nil, toStatus(err)
	}

	tokens, err := s.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.fail(ctx, "refresh failed", err)
	}

	return toTokens(tokens), nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *pb.GetUserRequest) (*pb.User, error) {
	if err := validateID(req.Id); err != nil {
		return nil, toStatus(err)
	}

	u, err := s.users.Get(ctx, req.Id)
	if err != nil {
		return nil, s.fail(ctx, "get user failed", err)
	}

	return toUser(u), nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *pb.ListUsersRequest) (*pb.ListUsersResponse, error) {
	list, err := s.users.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list users failed", err)
	}

	resp := &pb.ListUsersResponse{Users: make([]*pb.User, 0, len(list))}
	for _, u := range list {
		resp.Users = append(resp.Users, toUser(u))
	}
	return resp, nil
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *pb.CreateUserRequest) (*pb.User, error) {
	if err := validateCreateUser(req); err != nil {
		return nil, toStatus(err)
	}

	role := models.RoleUser
	if req.Role != "" {
		role, _ = models.ParseRole(req.Role)
	}

	u, err := s.users.Create(ctx, req.Username, req.Password, role)
	if err != nil {
		return nil, s.fail(ctx, "create user failed", err)
	}

	return toUser(u), nil
}

func (s *GRPCServer) UpdateUser(ctx context.Context, req *pb.UpdateUserRequest) (*pb.User, error) {
	if err := validateUpdateUser(req); err != nil {
		return nil, toStatus(err)
	}

	upd := models.UserUpdate{UserName: req.Username, Password: req.Password}
	if req.Role != nil {
		role, _ := models.ParseRole(*req.Role)
		upd.Role = &role
	}

	u, err := s.users.Update(ctx, req.Id, upd)
	if err != nil {
		return nil, s.fail(ctx, "update user failed", err)
	}

	return toUser(u), nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *pb.DeleteUserRequest) (*pb.DeleteUserResponse, error) {
	if err := validateID(req.Id); err != nil {
		return nil, toStatus(err)
	}

	if err := s.users.Delete(ctx, req.Id); err != nil {
		return nil, s.fail(ctx, "delete user failed", err)
	}

	return &pb.DeleteUserResponse{Message: "deleted"}, nil
}
