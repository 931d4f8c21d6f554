package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"moviereview/internal/auth"
)

var (
	errTokenMissing   = errors.New("access denied, token missing")
	errTokenMalformed = errors.New("authorization header is malformed")
)

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// read the auth header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			// parse it -> get the base64
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			username := app.config.auth.basic.user
			pass := app.config.auth.basic.pass

			creds := strings.SplitN(string(decoded), ":", 2)
			if username == "" || len(creds) != 2 || creds[0] != username || creds[1] != pass {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// An absent header or an empty token is errTokenMissing.
func bearerToken(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", errTokenMissing
	}

	scheme, token, _ := strings.Cut(authHeader, " ")
	if scheme != "Bearer" {
		return "", errTokenMalformed
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errTokenMissing
	}
	return token, nil
}

// AuthTokenMiddleware admits any valid token, user or admin.
// Missing token -> 403, invalid or expired token -> 400.
func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			if errors.Is(err, errTokenMissing) {
				app.forbiddenResponse(w, r, err)
				return
			}
			app.badRequestResponse(w, r, auth.ErrInvalidToken)
			return
		}

		claims, err := app.authenticator.ValidateToken(token)
		if err != nil {
			app.logger.Debugw("token rejected", "error", err.Error())
			app.badRequestResponse(w, r, auth.ErrInvalidToken)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), claims.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminTokenMiddleware requires isAdmin=true.
// Missing token -> 401, invalid token or non-admin -> 403.
func (app *application) AdminTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			if errors.Is(err, errTokenMissing) {
				app.unauthorizedErrorResponse(w, r, errors.New("unauthorized: token missing"))
				return
			}
			app.forbiddenResponse(w, r, auth.ErrInvalidToken)
			return
		}

		claims, err := app.authenticator.ValidateToken(token)
		if err != nil {
			app.forbiddenResponse(w, r, auth.ErrInvalidToken)
			return
		}

		principal := claims.Principal()
		if !principal.IsAdmin() {
			app.forbiddenResponse(w, r, auth.ErrNotAdmin)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled && app.rateLimiter != nil {
			if allow, retryAfter := app.rateLimiter.Allow(clientIP(r)); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter.String())
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port chi's RealIP leaves in place when no proxy header is set.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func getPrincipal(r *http.Request) (auth.Principal, bool) {
	return auth.PrincipalFromContext(r.Context())
}
