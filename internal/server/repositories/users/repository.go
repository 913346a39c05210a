package users

import (
	"context"

	"github.com/dmitrijs2005/accounts/internal/server/models"
)

// Repository is the user directory. Username lookups are case-insensitive.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	ExistsByUserName(ctx context.Context, login string) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.User, error)
}
