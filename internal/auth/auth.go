package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the provider-issued access token claims.
type Claims struct {
	Email        string                 `json:"email"`
	Role         string                 `json:"role,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// SessionUser is the authenticated caller attached to the request context.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type contextKey struct{}

var ContextUserKey = contextKey{}

func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(ContextUserKey).(*SessionUser)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

var (
	ErrNoSession       = errors.New("no session")
	ErrMissingCode     = errors.New("missing authorization code")
	ErrMissingVerifier = errors.New("missing code verifier")
)
