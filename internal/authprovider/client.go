// Package authprovider talks to the hosted auth REST API: OAuth authorize
// URLs, PKCE code exchange, refresh, user lookup and sign-out.
package authprovider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type ClientAPI interface {
	AuthorizeURL(provider, redirectTo, codeChallenge string) (string, error)
	ExchangeCodeForSession(ctx context.Context, code, codeVerifier string) (*Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*User, error)
	SignOut(ctx context.Context, accessToken string) error
}

type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *resty.Client
	logger  *slog.Logger
}

// New returns a placeholder when the backend URL or anon key is missing so
// the process still starts; every call on it fails with ErrNotConfigured.
func New(cfg Config, logger *slog.Logger) ClientAPI {
	if cfg.URL == "" || cfg.AnonKey == "" {
		logger.Warn("auth provider credentials missing, using placeholder client")
		return placeholder{}
	}
	return NewClient(cfg, logger)
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := strings.TrimSuffix(cfg.URL, "/")

	httpClient := resty.New().
		SetBaseURL(base+"/auth/v1").
		SetTimeout(timeout).
		SetHeader("apikey", cfg.AnonKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetError(&APIError{})

	return &Client{baseURL: base, http: httpClient, logger: logger}
}

func (c *Client) AuthorizeURL(provider, redirectTo, codeChallenge string) (string, error) {
	if provider == "" {
		return "", fmt.Errorf("oauth provider is required")
	}
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	if codeChallenge != "" {
		q.Set("code_challenge", codeChallenge)
		q.Set("code_challenge_method", "s256")
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

func (c *Client) ExchangeCodeForSession(ctx context.Context, code, codeVerifier string) (*Session, error) {
	var session Session
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "pkce").
		SetBody(map[string]string{
			"auth_code":     code,
			"code_verifier": codeVerifier,
		}).
		SetResult(&session).
		Post("/token")
	if err := c.check(resp, err, "exchange code"); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&session).
		Post("/token")
	if err := c.check(resp, err, "refresh session"); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&user).
		Get("/user")
	if err := c.check(resp, err, "get user"); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Post("/logout")
	return c.check(resp, err, "sign out")
}

func (c *Client) check(resp *resty.Response, err error, op string) error {
	if err != nil {
		c.logger.Error("auth provider call failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		apiErr, ok := resp.Error().(*APIError)
		if !ok || apiErr == nil {
			apiErr = &APIError{}
		}
		apiErr.Status = resp.StatusCode()
		c.logger.Warn("auth provider rejected request", "op", op, "status", resp.StatusCode(), "error", apiErr.Error())
		return fmt.Errorf("%s: %w", op, apiErr)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode())
	}
	return nil
}

type placeholder struct{}

func (placeholder) AuthorizeURL(string, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (placeholder) ExchangeCodeForSession(context.Context, string, string) (*Session, error) {
	return nil, ErrNotConfigured
}

func (placeholder) RefreshSession(context.Context, string) (*Session, error) {
	return nil, ErrNotConfigured
}

func (placeholder) GetUser(context.Context, string) (*User, error) {
	return nil, ErrNotConfigured
}

func (placeholder) SignOut(context.Context, string) error {
	return ErrNotConfigured
}
