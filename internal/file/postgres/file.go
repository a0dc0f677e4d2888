package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/business-management/internal"
	fileDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/file"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/file"
	"gorm.io/gorm"
)

type FileRepository struct {
	db   *gorm.DB
	spec query.Spec
}

func NewFileRepository(db *gorm.DB, batchSize int) *FileRepository {
	return &FileRepository{
		db: db,
		spec: query.Spec{
			OrderBy:       "created_at desc",
			Key:           "id",
			SearchColumns: []string{"name"},
			Filterable:    file.Filterable,
			BatchSize:     batchSize,
		},
	}
}

var _ file.RepositoryAPI = (*FileRepository)(nil)

func (r *FileRepository) List(ctx context.Context, f query.Filter, p query.Page) (query.Result[fileDatamodel.File], error) {
	res, err := query.List[fileDatamodel.File](ctx, r.db, r.spec, f, p)
	if err != nil {
		return res, internal.TranslateDBError(err, "file")
	}
	return res, nil
}

// ListByOwner uses the (table_name, ref_id) index. id breaks ties between
// files created in the same instant.
func (r *FileRepository) ListByOwner(ctx context.Context, owner file.Owner) ([]fileDatamodel.File, error) {
	files := []fileDatamodel.File{}
	err := r.db.WithContext(ctx).
		Where("table_name = ? AND ref_id = ?", string(owner.Kind), owner.ID).
		Order("created_at desc").Order("id desc").
		Find(&files).Error
	if err != nil {
		return nil, internal.TranslateDBError(err, "file")
	}
	return files, nil
}

func (r *FileRepository) GetByID(ctx context.Context, id int64) (*fileDatamodel.File, error) {
	var f fileDatamodel.File
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, file.ErrFileNotFound
	}
	if err != nil {
		return nil, internal.TranslateDBError(err, "file")
	}
	return &f, nil
}

func (r *FileRepository) Create(ctx context.Context, f *fileDatamodel.File) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return internal.TranslateDBError(err, "file")
	}
	return nil
}

func (r *FileRepository) Update(ctx context.Context, id int64, fields map[string]any) (*fileDatamodel.File, error) {
	res := r.db.WithContext(ctx).Model(&fileDatamodel.File{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, internal.TranslateDBError(res.Error, "file")
	}
	if res.RowsAffected == 0 {
		return nil, file.ErrFileNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *FileRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&fileDatamodel.File{})
	if res.Error != nil {
		return internal.TranslateDBError(res.Error, "file")
	}
	if res.RowsAffected == 0 {
		return file.ErrFileNotFound
	}
	return nil
}
