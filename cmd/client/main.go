// Command client is a small command-line front end for the account
// service gRPC API.
//
// Usage:
//
//	client [-g addr] [-u name] <command> [args]
//
// Commands: ping, signup, get <id>, list, create <name> [role], delete <id>.
// Passwords are read from the terminal without echo.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/accounts/internal/client/client"
	"golang.org/x/term"
)

func main() {

	fs := flag.NewFlagSet("client", flag.ExitOnError)
	addr := fs.String("g", "localhost:50051", "gRPC server address")
	userName := fs.String("u", "", "user name to sign in with")
	_ = fs.Parse(os.Args[1:])

	c, err := client.NewAccountsClient(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cli := &cli{
		c:        c,
		out:      os.Stdout,
		userName: *userName,
		readPassword: func(label string) ([]byte, error) {
			fmt.Fprint(os.Stderr, label)
			defer fmt.Fprintln(os.Stderr)
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
	}

	if err := cli.run(ctx, fs.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
