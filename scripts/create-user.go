// Command create-user seeds an account directly in the store, bypassing the
// HTTP API. Useful for demo data and operator recovery.
//
//	go run ./scripts/create-user.go -username amy -email amy@x.com
//
// The password is read from TASKLY_PASSWORD so it stays out of shell history.
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

	"github.com/taskly/taskly/internal/auth"
	"github.com/taskly/taskly/internal/model"
	"github.com/taskly/taskly/internal/repository"
)

type output struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "", "Username (required)")
		email       = flag.String("email", "", "Email (required)")
		migrate     = flag.Bool("migrate", false, "Apply pending migrations first")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	password := os.Getenv("TASKLY_PASSWORD")

	if *databaseURL == "" {
		fail("DATABASE_URL is required")
	}
	if *username == "" || *email == "" || password == "" {
		fail("-username, -email and TASKLY_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *migrate {
		if err := repository.Migrate(ctx, *databaseURL); err != nil {
			fail("migrate:", err)
		}
	}

	repo, err := repository.New(ctx, *databaseURL, repository.DefaultStoreTimeout)
	if err != nil {
		fail("connect database:", err)
	}
	defer repo.Close()

	user, err := createUser(ctx, repo, *username, *email, password)
	if err != nil {
		repo.Close()
		fail(err)
	}

	out := output{UserID: user.ID, Username: user.Username, Email: user.Email}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.UserID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fail("invalid format; use plain or json")
	}
}

func createUser(ctx context.Context, repo *repository.Repository, username, email, password string) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch err := repo.CreateUser(ctx, user); {
	case errors.Is(err, repository.ErrEmailExists):
		return nil, fmt.Errorf("email %s is already registered", email)
	case errors.Is(err, repository.ErrUsernameExists):
		return nil, fmt.Errorf("username %s is already taken", username)
	case err != nil:
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func fail(args ...any) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}
