// Package http exposes the account services over a JSON REST API built on chi.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 5 * time.Second

// AuthService is the authentication surface the REST API depends on.
type AuthService interface {
	SignUp(ctx context.Context, userName, password string) (*models.User, error)
	SignIn(ctx context.Context, userName, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Authenticate(ctx context.Context, token string) (*auth.Principal, bool)
}

// UserService is the user administration surface the REST API depends on.
type UserService interface {
	Create(ctx context.Context, userName, password string, role models.Role) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type HTTPServer struct {
	address     string
	auth        AuthService
	users       UserService
	corsOrigins []string
	logger      logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, as AuthService, us UserService, corsOrigins []string) (*HTTPServer, error) {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	return &HTTPServer{
		address:     a,
		auth:        as,
		users:       us,
		corsOrigins: corsOrigins,
		logger:      l.With("module", "http_server"),
	}, nil
}

// Router builds the chi router with middleware and all routes mounted.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(Authenticator(s.auth))

	r.Get("/ping", s.handlePing)

	r.Route("/account", func(r chi.Router) {
		r.Post("/signup", s.handleSignUp)
		r.Post("/signin", s.handleSignIn)
		r.Post("/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuthenticated)
			r.Get("/me", s.handleMe)
			r.Get("/users/{id}", s.handleGetUser)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(models.RoleAdmin))
			r.Get("/users", s.handleListUsers)
			r.Post("/users", s.handleCreateUser)
			r.Put("/users/{id}", s.handleUpdateUser)
			r.Delete("/users/{id}", s.handleDeleteUser)
		})
	})

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
