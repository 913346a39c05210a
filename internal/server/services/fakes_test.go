package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memUsersRepo is an in-memory users.Repository with case-insensitive
// unique usernames and per-method error injection.
type memUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.User

	getErr    error
	existsErr error
	createErr error
	updateErr error
	deleteErr error
	listErr   error

	// hideExisting makes ExistsByUserName always report false, so only the
	// unique constraint in Create/Update can catch duplicates.
	hideExisting bool
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{rows: map[int64]*models.User{}}
}

func (r *memUsersRepo) findByName(name string) *models.User {
	for _, u := range r.rows {
		if strings.EqualFold(u.UserName, name) {
			return u
		}
	}
	return nil
}

func (r *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if r.findByName(u.UserName) != nil {
		return nil, fmt.Errorf("%w: unique violation", common.ErrDuplicateUsername)
	}
	r.nextID++
	cp := *u
	cp.ID = r.nextID
	cp.CreatedAt = time.Now()
	r.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memUsersRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u := r.findByName(login)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsersRepo) ExistsByUserName(ctx context.Context, login string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	if r.hideExisting {
		return false, nil
	}
	return r.findByName(login) != nil, nil
}

func (r *memUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsersRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	return ok, nil
}

func (r *memUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	cur, ok := r.rows[u.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if other := r.findByName(u.UserName); other != nil && other.ID != u.ID {
		return nil, fmt.Errorf("%w: unique violation", common.ErrDuplicateUsername)
	}
	cp := *u
	cp.CreatedAt = cur.CreatedAt
	r.rows[u.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memUsersRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*models.User
	for _, u := range r.rows {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeRepoManager struct {
	u users.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository        { return m.u }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		BcryptCost:                   bcrypt.MinCost,
	}
}

func newTestServices(t *testing.T, repo users.Repository) (*AuthService, *UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	rm := &fakeRepoManager{u: repo}
	cfg := testConfig()
	return NewAuthService(db, rm, cfg, logging.Nop()), NewUserService(db, rm, cfg, logging.Nop()), mock
}
