package client

import (
	"context"

	pb "github.com/dmitrijs2005/accounts/internal/proto"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	SignUp(ctx context.Context, username, password string) (*pb.User, error)
	SignIn(ctx context.Context, username, password string) error
	Refresh(ctx context.Context) error
	Tokens() (access, refresh string)
	SetTokens(access, refresh string)
	GetUser(ctx context.Context, id int64) (*pb.User, error)
	ListUsers(ctx context.Context) ([]*pb.User, error)
	CreateUser(ctx context.Context, username, password, role string) (*pb.User, error)
	UpdateUser(ctx context.Context, req *pb.UpdateUserRequest) (*pb.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
