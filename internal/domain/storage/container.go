package storage

import (
	"context"
	"fmt"

	"moviereview/internal/auth"
	"moviereview/internal/domain/admins"
	"moviereview/internal/domain/movies"
	"moviereview/internal/domain/users"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool   *pgxpool.Pool
	Users  users.Store
	Admins admins.Store
	Movies movies.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:   db,
		Users:  users.NewRepository(db),
		Admins: admins.NewRepository(db),
		Movies: movies.NewRepository(db),
	}
}

// NewMemoryContainer wires the in-process stores.
func NewMemoryContainer() *Container {
	return &Container{
		Users:  users.NewMemoryStore(),
		Admins: admins.NewMemoryStore(),
		Movies: movies.NewMemoryStore(),
	}
}

// Ping reports whether the backing store is reachable.
func (c *Container) Ping(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	return c.pool.Ping(ctx)
}

// DisplayName resolves the name shown next to a principal's comments:
// the username for users, the login id for admins.
func (c *Container) DisplayName(ctx context.Context, p auth.Principal) (string, error) {
	if p.IsAdmin() {
		a, err := c.Admins.GetByID(ctx, p.ID)
		if err != nil {
			return "", fmt.Errorf("resolve admin %s: %w", p.ID, err)
		}
		return a.LoginID, nil
	}

	u, err := c.Users.GetByID(ctx, p.ID)
	if err != nil {
		return "", fmt.Errorf("resolve user %s: %w", p.ID, err)
	}
	return u.Username, nil
}
