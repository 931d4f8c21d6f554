package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(context.Context, *User) error
	GetByID(context.Context, string) (*User, error)
	// GetByLogin matches either the username or the email.
	GetByLogin(context.Context, string) (*User, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *User) error {
	query := `
	  INSERT INTO users (id, username, email, password, role)
	  VALUES ($1, $2, $3, $4, $5)
	  RETURNING created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = "user"
	}

	err := r.db.QueryRow(
		ctx, query, user.ID, user.Username, user.Email, user.Password.Hash(), user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_email_lower_key":
				return ErrDuplicateEmail
			case "users_username_key":
				return ErrDuplicateUsername
			}
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, userID string) (*User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, `WHERE id = $1`, userID)
}

func (r *Repository) GetByLogin(ctx context.Context, login string) (*User, error) {
	return r.getOne(ctx, `WHERE username = $1 OR lower(email) = lower($1) ORDER BY username = $1 DESC LIMIT 1`, login)
}

func (r *Repository) getOne(ctx context.Context, where string, arg any) (*User, error) {
	query := `SELECT id, username, email, password, role, created_at, updated_at FROM users ` + where

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var (
		user User
		hash []byte
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&hash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Password = FromHash(hash)
	return &user, nil
}
