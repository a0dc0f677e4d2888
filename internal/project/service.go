package project

import (
	"context"
	"log/slog"

	projectDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/revalidate"
)

type RepositoryAPI interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[projectDatamodel.Project], error)
	GetByID(ctx context.Context, id string) (*projectDatamodel.Project, error)
	Create(ctx context.Context, p *projectDatamodel.Project) error
	Update(ctx context.Context, id string, fields map[string]any) (*projectDatamodel.Project, error)
	Delete(ctx context.Context, id string) error

	ListItems(ctx context.Context, projectID string, f query.Filter, p query.Page) (query.Result[projectDatamodel.Item], error)
	GetItem(ctx context.Context, projectID string, id int64) (*projectDatamodel.Item, error)
	CreateItems(ctx context.Context, items []*projectDatamodel.Item) error
	UpdateItem(ctx context.Context, projectID string, id int64, fields map[string]any) (*projectDatamodel.Item, error)
	DeleteItem(ctx context.Context, projectID string, id int64) error
}

// PersonnelLister finds the people assigned to a project.
type PersonnelLister interface {
	ListByProject(ctx context.Context, projectID string, p query.Page) (query.Result[userDatamodel.User], error)
}

type Service struct {
	repo        RepositoryAPI
	personnel   PersonnelLister
	revalidator revalidate.Revalidator
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, personnel PersonnelLister, revalidator revalidate.Revalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		personnel:   personnel,
		revalidator: revalidator,
		logger:      logger,
	}
}

func (s *Service) List(ctx context.Context, f query.Filter, p query.Page) (query.Result[projectDatamodel.Project], error) {
	return s.repo.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, id string) (*projectDatamodel.Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Add(ctx context.Context, dto CreateProjectDTO) (*projectDatamodel.Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p := NewProject(dto)
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Warn("Project: create failed", "project_id", p.ID, "error", err)
		return nil, err
	}

	s.logger.Info("Project: created", "project_id", p.ID)
	s.revalidator.Revalidate(ctx, Root)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateProjectDTO) (*projectDatamodel.Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	fields, err := query.Patch(dto.Fields(), Updatable...)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project: updated", "project_id", id)
	s.revalidator.Revalidate(ctx, Root, Path(id))
	return p, nil
}

// Delete removes the project and, through the foreign key, its items.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Project: deleted", "project_id", id)
	s.revalidator.Revalidate(ctx, Root, Path(id))
	return nil
}

func (s *Service) ListItems(ctx context.Context, projectID string, f query.Filter, p query.Page) (query.Result[projectDatamodel.Item], error) {
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return query.Result[projectDatamodel.Item]{}, err
	}
	return s.repo.ListItems(ctx, projectID, f, p)
}

func (s *Service) GetItem(ctx context.Context, projectID string, id int64) (*projectDatamodel.Item, error) {
	return s.repo.GetItem(ctx, projectID, id)
}

func (s *Service) AddItem(ctx context.Context, projectID string, dto CreateItemDTO) (*projectDatamodel.Item, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	item := NewItem(projectID, dto)
	if err := s.repo.CreateItems(ctx, []*projectDatamodel.Item{item}); err != nil {
		return nil, err
	}

	s.logger.Info("Project: item added", "project_id", projectID, "item_id", item.ID)
	s.revalidator.Revalidate(ctx, Path(projectID), ItemsPath(projectID))
	return item, nil
}

// AddItems inserts a batch atomically: one bad row aborts the whole batch.
func (s *Service) AddItems(ctx context.Context, projectID string, dto BulkItemsDTO) ([]*projectDatamodel.Item, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	items := make([]*projectDatamodel.Item, len(dto.Items))
	for i, d := range dto.Items {
		items[i] = NewItem(projectID, d)
	}
	if err := s.repo.CreateItems(ctx, items); err != nil {
		s.logger.Warn("Project: bulk insert aborted", "project_id", projectID, "items", len(items), "error", err)
		return nil, err
	}

	s.logger.Info("Project: items added", "project_id", projectID, "items", len(items))
	s.revalidator.Revalidate(ctx, Path(projectID), ItemsPath(projectID))
	return items, nil
}

func (s *Service) UpdateItem(ctx context.Context, projectID string, id int64, dto UpdateItemDTO) (*projectDatamodel.Item, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	fields, err := query.Patch(dto.Fields(), ItemUpdatable...)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.UpdateItem(ctx, projectID, id, fields)
	if err != nil {
		return nil, err
	}

	s.revalidator.Revalidate(ctx, Path(projectID), ItemsPath(projectID))
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, projectID string, id int64) error {
	if err := s.repo.DeleteItem(ctx, projectID, id); err != nil {
		return err
	}

	s.logger.Info("Project: item deleted", "project_id", projectID, "item_id", id)
	s.revalidator.Revalidate(ctx, Path(projectID), ItemsPath(projectID))
	return nil
}

// ListPersonnel lists the people whose project list contains projectID.
func (s *Service) ListPersonnel(ctx context.Context, projectID string, p query.Page) (query.Result[userDatamodel.User], error) {
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return query.Result[userDatamodel.User]{}, err
	}
	return s.personnel.ListByProject(ctx, projectID, p)
}
