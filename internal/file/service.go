package file

import (
	"context"
	"log/slog"

	fileDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/file"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/revalidate"
)

type RepositoryAPI interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[fileDatamodel.File], error)
	ListByOwner(ctx context.Context, owner Owner) ([]fileDatamodel.File, error)
	GetByID(ctx context.Context, id int64) (*fileDatamodel.File, error)
	Create(ctx context.Context, f *fileDatamodel.File) error
	Update(ctx context.Context, id int64, fields map[string]any) (*fileDatamodel.File, error)
	Delete(ctx context.Context, id int64) error
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

func (s *Service) List(ctx context.Context, f query.Filter, p query.Page) (query.Result[fileDatamodel.File], error) {
	return s.repo.List(ctx, f, p)
}

// ListByOwner returns the owner's files, most recent first.
func (s *Service) ListByOwner(ctx context.Context, owner Owner) ([]fileDatamodel.File, error) {
	return s.repo.ListByOwner(ctx, owner)
}

func (s *Service) Get(ctx context.Context, id int64) (*fileDatamodel.File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Add(ctx context.Context, uploader string, dto CreateFileDTO) (*fileDatamodel.File, error) {
	owner, err := ParseOwner(dto.TableName, dto.RefID)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	f := NewFile(owner, uploader, dto)
	if err := s.repo.Create(ctx, f); err != nil {
		s.logger.Warn("File: create failed", "owner", owner.String(), "error", err)
		return nil, err
	}

	s.logger.Info("File: attached", "file_id", f.ID, "owner", owner.String())
	s.revalidator.Revalidate(ctx, Root, owner.Path())
	return f, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateFileDTO) (*fileDatamodel.File, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	fields, err := query.Patch(dto.Fields(), Updatable...)
	if err != nil {
		return nil, err
	}

	f, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.revalidator.Revalidate(ctx, Root, OwnerOf(f).Path())
	return f, nil
}

// Delete removes the row only; the stored object is managed by the storage
// provider.
func (s *Service) Delete(ctx context.Context, id int64) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("File: deleted", "file_id", id, "owner", OwnerOf(f).String())
	s.revalidator.Revalidate(ctx, Root, OwnerOf(f).Path())
	return nil
}
