package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/authprovider"
	"github.com/golang-jwt/jwt/v5"
)

const verifierCookie = "sb-code-verifier"

// SessionManager reads, refreshes and writes the provider session cookies.
// Access tokens are verified locally when the JWT secret is known and through
// the provider otherwise.
type SessionManager struct {
	cfg      internal.SessionConfig
	secret   []byte
	provider authprovider.ClientAPI
	logger   *slog.Logger
}

func NewSessionManager(cfg internal.SessionConfig, jwtSecret string, provider authprovider.ClientAPI, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		secret:   []byte(jwtSecret),
		provider: provider,
		logger:   logger,
	}
}

func (m *SessionManager) Config() internal.SessionConfig {
	return m.cfg
}

// VerifyAccessToken checks signature and expiry of a provider access token.
func (m *SessionManager) VerifyAccessToken(ctx context.Context, token string) (*SessionUser, error) {
	if len(m.secret) == 0 {
		u, err := m.provider.GetUser(ctx, token)
		if err != nil {
			return nil, internal.ErrInvalidToken
		}
		return &SessionUser{ID: u.ID, Email: u.Email}, nil
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}
	if claims.Email == "" || claims.Subject == "" {
		return nil, internal.ErrInvalidToken
	}
	return &SessionUser{ID: claims.Subject, Email: claims.Email}, nil
}

// Resolve returns the session user. When the access token is unusable and a
// refresh token exists the session is refreshed; the new session is returned
// so the caller can rewrite the cookies.
func (m *SessionManager) Resolve(r *http.Request) (*SessionUser, *authprovider.Session, error) {
	ctx := r.Context()

	if c, err := r.Cookie(m.cfg.AccessCookie); err == nil && c.Value != "" {
		user, verr := m.VerifyAccessToken(ctx, c.Value)
		if verr == nil {
			return user, nil, nil
		}
		m.logger.Debug("Session: access token rejected", "error", verr)
	}

	c, err := r.Cookie(m.cfg.RefreshCookie)
	if err != nil || c.Value == "" {
		return nil, nil, ErrNoSession
	}

	session, err := m.provider.RefreshSession(ctx, c.Value)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh session: %w", err)
	}
	if session.User.Email == "" {
		return nil, nil, fmt.Errorf("refresh session: %w", internal.ErrInvalidToken)
	}
	return &SessionUser{ID: session.User.ID, Email: session.User.Email}, session, nil
}

func (m *SessionManager) WriteCookies(w http.ResponseWriter, s *authprovider.Session) {
	maxAge := s.ExpiresIn
	if maxAge <= 0 {
		maxAge = int(time.Until(s.Expiry()).Seconds())
	}
	http.SetCookie(w, m.cookie(m.cfg.AccessCookie, s.AccessToken, maxAge))
	if s.RefreshToken != "" {
		http.SetCookie(w, m.cookie(m.cfg.RefreshCookie, s.RefreshToken, int(m.cfg.RefreshMaxAge.Seconds())))
	}
}

func (m *SessionManager) ClearCookies(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(m.cfg.AccessCookie, "", -1))
	http.SetCookie(w, m.cookie(m.cfg.RefreshCookie, "", -1))
}

func (m *SessionManager) AccessToken(r *http.Request) string {
	if c, err := r.Cookie(m.cfg.AccessCookie); err == nil {
		return c.Value
	}
	return ""
}

func (m *SessionManager) SetVerifier(w http.ResponseWriter, verifier string) {
	c := m.cookie(verifierCookie, verifier, 600)
	c.Path = "/auth"
	http.SetCookie(w, c)
}

func (m *SessionManager) TakeVerifier(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(verifierCookie)
	if err != nil {
		return ""
	}
	clear := m.cookie(verifierCookie, "", -1)
	clear.Path = "/auth"
	http.SetCookie(w, clear)
	return c.Value
}

func (m *SessionManager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
