// Command admin bootstraps administrator accounts.
//
// Usage:
//
//	admin create-admin -u <name> [-d dsn] [-b cost]
//
// The password is read from the terminal without echo.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accounts/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(cfg.Env, os.Stderr)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations error: %v", err)
	}

	us := services.NewUserService(db, rm, cfg, logger)

	p := &prompter{
		out:  os.Stderr,
		read: func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) },
	}

	if err := run(ctx, os.Args[1:], os.Stdout, p, us); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
