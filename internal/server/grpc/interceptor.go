package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/accounts/internal/common"
	pb "github.com/dmitrijs2005/accounts/internal/proto"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type access int

const (
	accessPublic access = iota
	accessAuthenticated
	accessAdmin
)

var methodAccess = map[string]access{
	pb.AccountService_Ping_FullMethodName:       accessPublic,
	pb.AccountService_SignUp_FullMethodName:     accessPublic,
	pb.AccountService_SignIn_FullMethodName:     accessPublic,
	pb.AccountService_Refresh_FullMethodName:    accessPublic,
	pb.AccountService_GetUser_FullMethodName:    accessAuthenticated,
	pb.AccountService_ListUsers_FullMethodName:  accessAdmin,
	pb.AccountService_CreateUser_FullMethodName: accessAdmin,
	pb.AccountService_UpdateUser_FullMethodName: accessAdmin,
	pb.AccountService_DeleteUser_FullMethodName: accessAdmin,
}

// accessFor returns the policy of a method. Unknown methods need a principal.
func accessFor(fullMethod string) access {
	if a, ok := methodAccess[fullMethod]; ok {
		return a
	}
	return accessAuthenticated
}

// bearerFromMetadata reads the bearer token from the authorization metadata key.
func bearerFromMetadata(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	values := md.Get(strings.ToLower(common.AuthorizationHeaderName))
	if len(values) == 0 {
		return "", false
	}
	return auth.BearerToken(values[0])
}

// authInterceptor binds the principal of a valid access token to ctx, then
// enforces the method's access policy.
func (s *GRPCServer) authInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if token, ok := bearerFromMetadata(ctx); ok {
		if p, ok := s.auth.Authenticate(ctx, token); ok {
			ctx = auth.WithPrincipal(ctx, p)
		}
	}

	switch accessFor(info.FullMethod) {
	case accessAuthenticated:
		if _, ok := auth.PrincipalFrom(ctx); !ok {
			return nil, toStatus(common.ErrUnauthenticated)
		}
	case accessAdmin:
		p, ok := auth.PrincipalFrom(ctx)
		if !ok {
			return nil, toStatus(common.ErrUnauthenticated)
		}
		if !auth.Authorize(p, models.RoleAdmin) {
			return nil, toStatus(common.ErrForbidden)
		}
	}

	return handler(ctx, req)
}
