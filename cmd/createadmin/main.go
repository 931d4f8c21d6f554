// Command createadmin registers an admin account. Running it again with an
// existing login id reports the account and exits 0.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"moviereview/internal/db"
	"moviereview/internal/domain/admins"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var errInvalidInput = errors.New("login, email and a password of at least 6 characters are required")

// createAdmin reports created=false without error when the login id is taken.
func createAdmin(ctx context.Context, store admins.Store, login, email, password string) (*admins.Admin, bool, error) {
	login = strings.TrimSpace(login)
	email = strings.TrimSpace(email)
	if login == "" || email == "" || len(password) < 6 {
		return nil, false, errInvalidInput
	}

	existing, err := store.GetByLoginID(ctx, login)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, admins.ErrNotFound):
		return nil, false, err
	}

	admin := &admins.Admin{LoginID: login, Email: email}
	if err := admin.Password.Set(password); err != nil {
		return nil, false, err
	}

	if err := store.Create(ctx, admin); err != nil {
		if errors.Is(err, admins.ErrDuplicateLogin) {
			// lost a race with another run
			return nil, false, err
		}
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return admin, true, nil
}

func main() {
	login := flag.String("login", "", "admin login id")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()

	addr := os.Getenv("DB_ADDR")
	if addr == "" {
		logger.Fatal("DB_ADDR must be set")
	}
	maxConns := 0
	if val := os.Getenv("DB_MAX_CONNS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			logger.Fatalf("Invalid value for DB_MAX_CONNS: %v", err)
		}
		maxConns = parsed
	}
	idle := os.Getenv("DB_MAX_IDLE_TIME")
	if idle == "" {
		idle = "1m"
	}

	pool, err := db.New(addr, int32(maxConns), idle)
	if err != nil {
		logger.Fatalw("database unreachable", "error", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatalw("schema migration failed", "error", err)
	}

	admin, created, err := createAdmin(ctx, admins.NewRepository(pool), *login, *email, *password)
	if err != nil {
		logger.Fatalw("could not create admin", "login", *login, "error", err)
	}
	if !created {
		logger.Infow("admin already exists", "login", admin.LoginID, "id", admin.ID)
		return
	}
	logger.Infow("admin created", "login", admin.LoginID, "id", admin.ID)
}
