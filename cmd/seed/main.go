// Command seed creates a user for local development and prints a bearer
// token for it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/placeshare/placeshare/internal/auth"
	"github.com/placeshare/placeshare/internal/model"
	"github.com/placeshare/placeshare/internal/repository"
)

type output struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		jwtSecret   = flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "HS256 secret shared with the API")
		name        = flag.String("name", "Dev User", "User display name")
		email       = flag.String("email", "dev@placeshare.local", "User email")
		password    = flag.String("password", os.Getenv("SEED_PASSWORD"), "User password (hashed with argon2id)")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fail("DATABASE_URL is required")
	}
	if *jwtSecret == "" {
		fail("JWT_SECRET is required")
	}
	if len(*password) < 6 {
		fail("password must be at least 6 characters")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fail("connect database:", err)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fail("hash password:", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         *name,
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			fail("email already registered:", user.Email)
		}
		fail("create user:", err)
	}

	token, err := auth.NewTokens(*jwtSecret, *ttl, nil).Issue(user.ID)
	if err != nil {
		fail("issue token:", err)
	}

	out := output{UserID: user.ID, Email: user.Email, Token: token}
	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fail("invalid format; use plain or json")
	}
}

func fail(args ...any) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}
