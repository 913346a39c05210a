package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/flagx"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

const cmdCreateAdmin = "create-admin"

var (
	errUsage            = fmt.Errorf("usage: admin %s -u <name>", cmdCreateAdmin)
	errPasswordMismatch = errors.New("passwords do not match")
)

type userCreator interface {
	Create(ctx context.Context, userName, password string, role models.Role) (*models.User, error)
}

// prompter asks for a password twice without echoing it.
type prompter struct {
	out  io.Writer
	read func() ([]byte, error)
}

func (p *prompter) ask(label string) ([]byte, error) {
	fmt.Fprint(p.out, label)
	b, err := p.read()
	fmt.Fprintln(p.out)
	return b, err
}

func (p *prompter) password() (string, error) {
	first, err := p.ask("Password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(first)

	second, err := p.ask("Repeat password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(second)

	if !bytes.Equal(first, second) {
		return "", errPasswordMismatch
	}

	return string(first), nil
}

func run(ctx context.Context, args []string, stdout io.Writer, p *prompter, users userCreator) error {

	if len(args) == 0 || args[0] != cmdCreateAdmin {
		return errUsage
	}

	fs := flag.NewFlagSet(cmdCreateAdmin, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userName := fs.String("u", "", "admin user name")

	if err := fs.Parse(flagx.FilterArgs(args[1:], []string{"-u"})); err != nil {
		return errUsage
	}
	if *userName == "" {
		return errUsage
	}

	password, err := p.password()
	if err != nil {
		return err
	}

	u, err := users.Create(ctx, *userName, password, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(stdout, "admin %q created with id %d\n", u.UserName, u.ID)
	return nil
}
