package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charlesng35/studentms/internal/app"
	iauth "github.com/charlesng35/studentms/internal/auth"
	"github.com/charlesng35/studentms/pkg/crypto"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	fs.SetOutput(out)

	var (
		configPath   string
		role         string
		recipientID  uint
		ttl          time.Duration
		hashPassword string
	)
	fs.StringVar(&configPath, "config", "", "Path to configuration directory")
	fs.StringVar(&role, "role", string(iauth.RoleAdmin), "Token role: admin or student")
	fs.UintVar(&recipientID, "recipient", 0, "Student id (required for the student role)")
	fs.DurationVar(&ttl, "ttl", 0, "Override the configured token lifetime")
	fs.StringVar(&hashPassword, "hash-password", "", "Print a bcrypt hash for auth.admin.password_hash and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if hashPassword != "" {
		hash, err := crypto.HashPassword(hashPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		_, err = fmt.Fprintln(out, hash)
		return err
	}

	var paths []string
	if strings.TrimSpace(configPath) != "" {
		paths = append(paths, configPath)
	}
	cfg, err := app.LoadConfig(paths...)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		return errors.New("auth.jwt.secret must be configured to mint tokens the server accepts")
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return err
	}

	token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{
		Role:        iauth.Role(strings.ToLower(strings.TrimSpace(role))),
		RecipientID: recipientID,
		TTL:         ttl,
	})
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
