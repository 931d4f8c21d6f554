package admins

import (
	"errors"
	"time"

	"moviereview/internal/domain/users"
)

var (
	ErrNotFound       = errors.New("admin not found")
	ErrDuplicateLogin = errors.New("an admin with that login id already exists")
)

// Admin is a separate principal type from users.User, not a role flag on it.
type Admin struct {
	ID        string         `json:"id"`
	LoginID   string         `json:"loginId"`
	Email     string         `json:"email"`
	Password  users.Password `json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
}
