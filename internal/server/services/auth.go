// Package services contains server-side business logic. This file implements
// AuthService, which handles sign-up, sign-in, access token refresh and the
// request-time authentication of bearer tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/users"
	"github.com/google/uuid"
)

// AuthService provides authentication-related operations:
// - SignUp: create self-registered users
// - SignIn: verify credentials and mint a token pair
// - Refresh: exchange a refresh token for a new access token
// - Authenticate: resolve a bearer access token to a principal
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
	codec       *auth.Codec
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      auth.NewHasher(cfg.BcryptCost),
		codec:       auth.NewCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration),
		logger:      logger.With("module", "auth_service"),
	}
}

// SignUp registers a new user with role user. No tokens are issued.
func (s *AuthService) SignUp(ctx context.Context, userName, password string) (*models.User, error) {
	if err := validateCredentials(userName, password); err != nil {
		return nil, err
	}

	u, err := createUser(ctx, s.repomanager.Users(s.db), s.hasher, userName, password, models.RoleUser)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user signed up", "user_id", u.ID, "username", u.UserName)
	return u, nil
}

// SignIn verifies credentials and returns a fresh token pair. An unknown
// user and a wrong password both yield common.ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, userName, password string) (*auth.TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.getDummyHash())
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.codec.IssuePair(user.UserName)
	if err != nil {
		return nil, fmt.Errorf("error generating token pair: %w", err)
	}
	return pair, nil
}

// Refresh validates a refresh token and returns a new access token paired
// with the same refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.codec.Parse(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != auth.KindRefresh {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	access, err := s.codec.IssueAccess(user.UserName)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}
	return &auth.TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// Authenticate resolves an access token to the principal it names. It never
// returns an error: any failure means the request stays anonymous.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Principal, bool) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		s.logger.Debug(ctx, "bearer token rejected", "error", err)
		return nil, false
	}
	if claims.TokenType != auth.KindAccess {
		s.logger.Warn(ctx, "non-access token presented as bearer", "kind", claims.TokenType)
		return nil, false
	}

	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "token subject not found", "subject", claims.Subject)
		} else {
			s.logger.Warn(ctx, "user lookup failed", "subject", claims.Subject, "error", err)
		}
		return nil, false
	}

	return auth.NewPrincipal(user), true
}

// getDummyHash returns a digest of a throwaway password with the configured
// cost, so that sign-in for unknown users spends the same bcrypt time.
func (s *AuthService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// createUser checks the username is free, hashes the password and inserts
// the user. The store's unique index is the final arbiter.
func createUser(ctx context.Context, repo users.Repository, h *auth.Hasher, userName, password string, role models.Role) (*models.User, error) {
	exists, err := repo.ExistsByUserName(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if exists {
		return nil, common.ErrDuplicateUsername
	}

	digest, err := h.Hash(password)
	if err != nil {
		return nil, err
	}

	u, err := repo.Create(ctx, &models.User{UserName: userName, PasswordHash: digest, Role: role})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, common.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}
