package users

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateEmail    = errors.New("a user with that email already exists")
	ErrDuplicateUsername = errors.New("a user with that username already exists")
	QueryTimeoutDuration = time.Second * 5
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Password keeps only the bcrypt hash; the plaintext never leaves Set.
type Password struct {
	hash []byte
}

func (p *Password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.hash = hash
	return nil
}

// Compare reports whether text matches the stored hash.
func (p *Password) Compare(text string) bool {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text)) == nil
}

func (p *Password) Hash() []byte { return p.hash }

// FromHash wraps a hash loaded from storage.
func FromHash(hash []byte) Password { return Password{hash: hash} }
