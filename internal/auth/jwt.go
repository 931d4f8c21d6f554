package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	TokenTTL = 24 * time.Hour
)

// Claims carried by every access token.
type Claims struct {
	IsAdmin  bool   `json:"isAdmin"`
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Principal derives the request principal. The isAdmin claim is authoritative, role is informational.
func (c *Claims) Principal() Principal {
	if c.IsAdmin {
		return Principal{Kind: KindAdmin, ID: c.Subject}
	}
	return Principal{Kind: KindUser, ID: c.Subject, Username: c.Username}
}

type JWTAuthenticator struct {
	secret string
	iss    string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTAuthenticator(secret, iss string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: secret, iss: iss, ttl: TokenTTL, now: time.Now}
}

func (a *JWTAuthenticator) GenerateUserToken(userID, username string) (string, error) {
	return a.generate(userID, false, RoleUser, username)
}

func (a *JWTAuthenticator) GenerateAdminToken(adminID string) (string, error) {
	return a.generate(adminID, true, RoleAdmin, "")
}

func (a *JWTAuthenticator) generate(subject string, isAdmin bool, role, username string) (string, error) {
	now := a.now()
	claims := &Claims{
		IsAdmin:  isAdmin,
		Role:     role,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.iss,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(a.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken verifies signature, algorithm and expiry and returns the claims.
func (a *JWTAuthenticator) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(a.iss),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
