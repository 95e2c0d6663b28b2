// Command adduser creates an account directly in the store, useful for
// bootstrapping the owner before the web UI is reachable.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"housefund/internal/auth"
	"housefund/internal/backend"
	"housefund/internal/config"
	"housefund/internal/core"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	role := fs.String("role", "viewer", "Account role: owner or viewer")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> [-password <password>] [-role owner|viewer]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user")
	}
	if !core.Role(*role).IsValid() {
		return fmt.Errorf("invalid role %q: must be owner or viewer", *role)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	result, err := backend.Open(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer result.Cleanup()

	ctx := context.Background()
	accounts, err := result.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	if _, exists := accounts[*username]; exists {
		return fmt.Errorf("user %s already exists", *username)
	}
	if core.Role(*role) == core.RoleOwner {
		for _, acct := range accounts {
			if acct.Role == core.RoleOwner {
				return fmt.Errorf("owner account %s already exists", acct.Username)
			}
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	acct, err := core.NewAccount(*username, hash, core.Role(*role))
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	accounts[acct.Username] = acct

	if err := result.Store.Save(ctx, accounts); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with role %s\n", acct.Username, acct.Role)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Read without echo when attached to a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
