package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/frahmantamala/business-management/internal/authprovider"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
)

type ServiceAPI interface {
	AuthorizeURL(next, codeChallenge string) (string, error)
	CompleteLogin(ctx context.Context, code, codeVerifier string) (*authprovider.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, su *SessionUser) (*MeResponse, error)
}

type RepositoryAPI interface {
	// CreateIfMissing inserts u unless a row with the same email exists and
	// reports whether a row was written.
	CreateIfMissing(ctx context.Context, u *userDatamodel.User) (bool, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
}

type Service struct {
	repo          RepositoryAPI
	provider      authprovider.ClientAPI
	baseURL       string
	oauthProvider string
	logger        *slog.Logger
}

func NewService(repo RepositoryAPI, provider authprovider.ClientAPI, baseURL, oauthProvider string, logger *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		provider:      provider,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		oauthProvider: oauthProvider,
		logger:        logger,
	}
}

func (s *Service) AuthorizeURL(next, codeChallenge string) (string, error) {
	redirectTo := s.baseURL + "/auth/callback?next=" + url.QueryEscape(next)
	return s.provider.AuthorizeURL(s.oauthProvider, redirectTo, codeChallenge)
}

// CompleteLogin exchanges the code and provisions the application user. A
// failed provision is logged and does not fail the login.
func (s *Service) CompleteLogin(ctx context.Context, code, codeVerifier string) (*authprovider.Session, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if codeVerifier == "" {
		return nil, ErrMissingVerifier
	}

	session, err := s.provider.ExchangeCodeForSession(ctx, code, codeVerifier)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	if session.User.Email == "" {
		return nil, fmt.Errorf("exchange code: session has no email")
	}

	if err := s.provision(ctx, session.User); err != nil {
		s.logger.Error("Auth: failed to provision user", "email", session.User.Email, "error", err)
	}
	return session, nil
}

func (s *Service) provision(ctx context.Context, pu authprovider.User) error {
	u := &userDatamodel.User{
		Email:       strings.ToLower(pu.Email),
		FullName:    pu.DisplayName(),
		AvatarURL:   pu.AvatarURL(),
		AccessLevel: userDatamodel.AccessStaff,
		WorkStatus:  userDatamodel.WorkStatusActive,
	}
	created, err := s.repo.CreateIfMissing(ctx, u)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("Auth: provisioned user", "email", u.Email)
	}
	return nil
}

func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return s.provider.SignOut(ctx, accessToken)
}

func (s *Service) CurrentUser(ctx context.Context, su *SessionUser) (*MeResponse, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(su.Email))
	if err != nil {
		return nil, err
	}
	return &MeResponse{ID: su.ID, User: u}, nil
}
