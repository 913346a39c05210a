package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
)

// UserService implements administrative CRUD over user records. Access
// control is applied by the transports before these methods are called.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      auth.NewHasher(cfg.BcryptCost),
		logger:      logger.With("module", "user_service"),
	}
}

// Create inserts a user with the given role. An empty role means user.
func (s *UserService) Create(ctx context.Context, userName, password string, role models.Role) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if err := validateCredentials(userName, password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}

	u, err := createUser(ctx, s.repomanager.Users(s.db), s.hasher, userName, password, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", common.ErrValidation)
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return list, nil
}

// Update applies the non-nil fields of upd to user id inside one transaction.
// Renaming onto a name held by another user fails with
// common.ErrDuplicateUsername; a user may change the case of its own name.
func (s *UserService) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", common.ErrValidation)
	}
	if err := validateUpdate(upd); err != nil {
		return nil, err
	}

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error loading user: %w", err)
		}

		if upd.UserName != nil && !strings.EqualFold(*upd.UserName, user.UserName) {
			exists, err := repo.ExistsByUserName(ctx, *upd.UserName)
			if err != nil {
				return fmt.Errorf("error checking username: %w", err)
			}
			if exists {
				return common.ErrDuplicateUsername
			}
		}
		if upd.UserName != nil {
			user.UserName = *upd.UserName
		}
		if upd.Password != nil {
			digest, err := s.hasher.Hash(*upd.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = digest
		}
		if upd.Role != nil {
			user.Role = *upd.Role
		}

		updated, err = repo.Update(ctx, user)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrUserNotFound
		case errors.Is(err, common.ErrDuplicateUsername):
			return common.ErrDuplicateUsername
		case err != nil:
			return fmt.Errorf("error updating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user updated", "user_id", updated.ID)
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", common.ErrValidation)
	}

	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error deleting user: %w", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}
