package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/business-management/internal"
	projectDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/project"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/project"
	"gorm.io/gorm"
)

const itemInsertBatch = 500

type ProjectRepository struct {
	db       *gorm.DB
	spec     query.Spec
	itemSpec query.Spec
}

func NewProjectRepository(db *gorm.DB, batchSize int) *ProjectRepository {
	return &ProjectRepository{
		db: db,
		spec: query.Spec{
			OrderBy:       "created_at desc",
			Key:           "id",
			SearchColumns: []string{"id", "name"},
			Filterable:    project.Filterable,
			BatchSize:     batchSize,
		},
		itemSpec: query.Spec{
			OrderBy:       "wbs",
			Key:           "id",
			SearchColumns: []string{"name", "wbs"},
			Filterable:    append([]string{"project_id"}, project.ItemFilterable...),
			BatchSize:     batchSize,
		},
	}
}

var _ project.RepositoryAPI = (*ProjectRepository)(nil)

func (r *ProjectRepository) List(ctx context.Context, f query.Filter, p query.Page) (query.Result[projectDatamodel.Project], error) {
	res, err := query.List[projectDatamodel.Project](ctx, r.db, r.spec, f, p)
	if err != nil {
		return res, internal.TranslateDBError(err, "project")
	}
	return res, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*projectDatamodel.Project, error) {
	var p projectDatamodel.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, internal.TranslateDBError(err, "project")
	}
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *projectDatamodel.Project) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return internal.TranslateDBError(err, "project")
	}
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, fields map[string]any) (*projectDatamodel.Project, error) {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, internal.TranslateDBError(res.Error, "project")
	}
	if res.RowsAffected == 0 {
		return nil, project.ErrProjectNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&projectDatamodel.Project{})
	if res.Error != nil {
		return internal.TranslateDBError(res.Error, "project")
	}
	if res.RowsAffected == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) ListItems(ctx context.Context, projectID string, f query.Filter, p query.Page) (query.Result[projectDatamodel.Item], error) {
	equals := map[string]any{"project_id": projectID}
	for k, v := range f.Equals {
		equals[k] = v
	}
	f.Equals = equals

	res, err := query.List[projectDatamodel.Item](ctx, r.db, r.itemSpec, f, p)
	if err != nil {
		return res, internal.TranslateDBError(err, "project item")
	}
	return res, nil
}

func (r *ProjectRepository) GetItem(ctx context.Context, projectID string, id int64) (*projectDatamodel.Item, error) {
	var item projectDatamodel.Item
	err := r.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, id).First(&item).Error
	if err != nil {
		return nil, internal.TranslateDBError(err, "project item")
	}
	return &item, nil
}

// CreateItems inserts every item in one transaction.
func (r *ProjectRepository) CreateItems(ctx context.Context, items []*projectDatamodel.Item) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(items, itemInsertBatch).Error
	})
	if err != nil {
		for _, item := range items {
			item.ID = 0
		}
		return internal.TranslateDBError(err, "project item")
	}
	return nil
}

func (r *ProjectRepository) UpdateItem(ctx context.Context, projectID string, id int64, fields map[string]any) (*projectDatamodel.Item, error) {
	res := r.db.WithContext(ctx).Model(&projectDatamodel.Item{}).
		Where("project_id = ? AND id = ?", projectID, id).
		Updates(fields)
	if res.Error != nil {
		return nil, internal.TranslateDBError(res.Error, "project item")
	}
	if res.RowsAffected == 0 {
		return nil, project.ErrItemNotFound
	}
	return r.GetItem(ctx, projectID, id)
}

func (r *ProjectRepository) DeleteItem(ctx context.Context, projectID string, id int64) error {
	res := r.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, id).Delete(&projectDatamodel.Item{})
	if res.Error != nil {
		return internal.TranslateDBError(res.Error, "project item")
	}
	if res.RowsAffected == 0 {
		return project.ErrItemNotFound
	}
	return nil
}
