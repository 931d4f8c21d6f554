package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotAdmin     = errors.New("forbidden: admins only")
)

type Authenticator interface {
	GenerateUserToken(userID, username string) (string, error)
	GenerateAdminToken(adminID string) (string, error)
	ValidateToken(token string) (*Claims, error)
}

type Kind int

const (
	KindUser Kind = iota + 1
	KindAdmin
)

// Principal is the authenticated identity making a request.
type Principal struct {
	Kind     Kind
	ID       string
	Username string // users only
}

func (p Principal) IsAdmin() bool { return p.Kind == KindAdmin }

// Role is the value carried in the token's role claim.
func (p Principal) Role() string {
	if p.IsAdmin() {
		return RoleAdmin
	}
	return RoleUser
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
