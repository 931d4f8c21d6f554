package admins

import (
	"context"
	"errors"
	"fmt"

	"moviereview/internal/domain/users"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(context.Context, *Admin) error
	GetByID(context.Context, string) (*Admin, error)
	GetByLoginID(context.Context, string) (*Admin, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, admin *Admin) error {
	ctx, cancel := context.WithTimeout(ctx, users.QueryTimeoutDuration)
	defer cancel()

	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO admins (id, login_id, email, password)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, admin.ID, admin.LoginID, admin.Email, admin.Password.Hash()).Scan(&admin.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateLogin
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Admin, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *Repository) GetByLoginID(ctx context.Context, loginID string) (*Admin, error) {
	return r.getOne(ctx, `WHERE login_id = $1`, loginID)
}

func (r *Repository) getOne(ctx context.Context, where string, arg any) (*Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, users.QueryTimeoutDuration)
	defer cancel()

	var (
		a    Admin
		hash []byte
	)
	err := r.db.QueryRow(ctx, `SELECT id, login_id, email, password, created_at FROM admins `+where, arg).
		Scan(&a.ID, &a.LoginID, &a.Email, &hash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	a.Password = users.FromHash(hash)
	return &a, nil
}
