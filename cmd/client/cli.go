package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/accounts/internal/client/client"
	"github.com/dmitrijs2005/accounts/internal/common"
	pb "github.com/dmitrijs2005/accounts/internal/proto"
)

var errUsage = errors.New("usage: client [-g addr] [-u name] ping|signup|get <id>|list|create <name> [role]|delete <id>")

type cli struct {
	c            client.Client
	out          io.Writer
	userName     string
	readPassword func(label string) ([]byte, error)
}

func (a *cli) password(label string) (string, error) {
	b, err := a.readPassword(label)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(b)
	return string(b), nil
}

func (a *cli) signIn(ctx context.Context) error {
	if a.userName == "" {
		return errUsage
	}
	pw, err := a.password("Password: ")
	if err != nil {
		return err
	}
	return a.c.SignIn(ctx, a.userName, pw)
}

func (a *cli) printUser(u *pb.User) {
	fmt.Fprintf(a.out, "%d\t%s\t%s\n", u.Id, u.Username, u.Role)
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	return common.ParseUserID(args[0])
}

func (a *cli) run(ctx context.Context, args []string) error {

	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "ping":
		if err := a.c.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "OK")
		return nil

	case "signup":
		if a.userName == "" {
			return errUsage
		}
		pw, err := a.password("Password: ")
		if err != nil {
			return err
		}
		u, err := a.c.SignUp(ctx, a.userName, pw)
		if err != nil {
			return err
		}
		a.printUser(u)
		return nil
	}

	// everything below needs a session
	switch cmd {
	case "get", "delete", "list", "create":
	default:
		return errUsage
	}

	if err := a.signIn(ctx); err != nil {
		return err
	}

	switch cmd {
	case "get":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		u, err := a.c.GetUser(ctx, id)
		if err != nil {
			return err
		}
		a.printUser(u)

	case "delete":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.c.DeleteUser(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "deleted")

	case "list":
		users, err := a.c.ListUsers(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tROLE")
		for _, u := range users {
			fmt.Fprintln(w, strconv.FormatInt(u.Id, 10)+"\t"+u.Username+"\t"+u.Role)
		}
		return w.Flush()

	case "create":
		if len(rest) < 1 || len(rest) > 2 {
			return errUsage
		}
		role := ""
		if len(rest) == 2 {
			role = rest[1]
		}
		pw, err := a.password("New user password: ")
		if err != nil {
			return err
		}
		u, err := a.c.CreateUser(ctx, rest[0], pw, role)
		if err != nil {
			return err
		}
		a.printUser(u)
	}

	return nil
}
