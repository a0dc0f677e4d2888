package authprovider

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("auth provider is not configured")

type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// DisplayName picks full_name, then name, then the email local part.
func (u User) DisplayName() string {
	for _, key := range []string{"full_name", "name"} {
		if v, ok := u.UserMetadata[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

func (u User) AvatarURL() string {
	for _, key := range []string{"avatar_url", "picture"} {
		if v, ok := u.UserMetadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

func (s *Session) Expiry() time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	return time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
}

// APIError is the provider's error body; it uses one of two shapes.
type APIError struct {
	Status           int    `json:"-"`
	Code             any    `json:"code,omitempty"`
	Message          string `json:"msg,omitempty"`
	ErrorCode        string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.ErrorDescription
	}
	if msg == "" {
		msg = e.ErrorCode
	}
	return fmt.Sprintf("auth provider returned %d: %s", e.Status, msg)
}
