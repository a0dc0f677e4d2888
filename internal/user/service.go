package user

import (
	"context"
	"log/slog"

	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/personnel"
	"github.com/frahmantamala/business-management/internal/revalidate"
)

type RepositoryAPI interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[userDatamodel.User], error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, email string, fields map[string]any) (*userDatamodel.User, error)
	Delete(ctx context.Context, email string) error
	AddProject(ctx context.Context, email, projectID string) (*userDatamodel.User, error)
	RemoveProject(ctx context.Context, email, projectID string) (*userDatamodel.User, error)
}

type Service struct {
	repo        RepositoryAPI
	revalidator revalidate.Revalidator
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, revalidator revalidate.Revalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		revalidator: revalidator,
		logger:      logger,
	}
}

func (s *Service) List(ctx context.Context, f query.Filter, p query.Page) (query.Result[userDatamodel.User], error) {
	return s.repo.List(ctx, f, p)
}

// GetAll returns every person, fetched in batches. It is the personnel
// cache's fetcher.
func (s *Service) GetAll(ctx context.Context) ([]*userDatamodel.User, error) {
	res, err := s.repo.List(ctx, query.Filter{}, query.Page{PageSize: query.AllRows})
	if err != nil {
		s.logger.Error("Personnel: failed to load all users", "error", err)
		return nil, err
	}
	users := make([]*userDatamodel.User, len(res.Data))
	for i := range res.Data {
		users[i] = &res.Data[i]
	}
	return users, nil
}

// ListByProject lists people whose project_ids contain projectID.
func (s *Service) ListByProject(ctx context.Context, projectID string, p query.Page) (query.Result[userDatamodel.User], error) {
	f := query.Filter{Contains: map[string]string{"project_ids": projectID}}
	return s.repo.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, email string) (*userDatamodel.User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *Service) Add(ctx context.Context, dto CreateUserDTO) (*userDatamodel.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u := NewUser(dto)
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Warn("Personnel: create failed", "email", u.Email, "error", err)
		return nil, err
	}

	s.logger.Info("Personnel: user created", "email", u.Email, "access_level", u.AccessLevel)
	s.revalidator.Revalidate(ctx, personnel.Root)
	return u, nil
}

func (s *Service) Update(ctx context.Context, email string, dto UpdateUserDTO) (*userDatamodel.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	fields, err := query.Patch(dto.Fields(), Updatable...)
	if err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)
	u, err := s.repo.Update(ctx, email, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Personnel: user updated", "email", email, "fields", len(fields))
	s.revalidator.Revalidate(ctx, personnel.Root, Path(email))
	return u, nil
}

func (s *Service) Delete(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if err := s.repo.Delete(ctx, email); err != nil {
		return err
	}

	s.logger.Info("Personnel: user deleted", "email", email)
	s.revalidator.Revalidate(ctx, personnel.Root, Path(email))
	return nil
}

func (s *Service) AssignProject(ctx context.Context, email string, dto AssignProjectDTO) (*userDatamodel.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)
	u, err := s.repo.AddProject(ctx, email, dto.ProjectID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Personnel: project assigned", "email", email, "project_id", dto.ProjectID)
	s.revalidator.Revalidate(ctx, personnel.Root, Path(email), projectPath(dto.ProjectID))
	return u, nil
}

func (s *Service) RemoveProject(ctx context.Context, email, projectID string) (*userDatamodel.User, error) {
	email = NormalizeEmail(email)
	u, err := s.repo.RemoveProject(ctx, email, projectID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Personnel: project removed", "email", email, "project_id", projectID)
	s.revalidator.Revalidate(ctx, personnel.Root, Path(email), projectPath(projectID))
	return u, nil
}
