package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/business-management/internal"
	pycDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/pyc"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/pyc"
	"gorm.io/gorm"
)

type PYCRepository struct {
	db   *gorm.DB
	spec query.Spec
}

func NewPYCRepository(db *gorm.DB, batchSize int) *PYCRepository {
	return &PYCRepository{
		db: db,
		spec: query.Spec{
			OrderBy:       "created_at desc",
			Key:           "id",
			SearchColumns: []string{"id", "title"},
			Filterable:    pyc.Filterable,
			BatchSize:     batchSize,
		},
	}
}

var _ pyc.RepositoryAPI = (*PYCRepository)(nil)

func (r *PYCRepository) List(ctx context.Context, f query.Filter, p query.Page) (query.Result[pycDatamodel.PYC], error) {
	res, err := query.List[pycDatamodel.PYC](ctx, r.db, r.spec, f, p)
	if err != nil {
		return res, internal.TranslateDBError(err, "pyc")
	}
	return res, nil
}

func (r *PYCRepository) GetByID(ctx context.Context, id string) (*pycDatamodel.PYC, error) {
	var p pycDatamodel.PYC
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pyc.ErrPYCNotFound
	}
	if err != nil {
		return nil, internal.TranslateDBError(err, "pyc")
	}
	return &p, nil
}

func (r *PYCRepository) Create(ctx context.Context, p *pycDatamodel.PYC) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return internal.TranslateDBError(err, "pyc")
	}
	return nil
}

// Transition is a single conditional UPDATE, so two approvers racing on the
// same request cannot both win.
func (r *PYCRepository) Transition(ctx context.Context, id string, from []string, fields map[string]any) (*pycDatamodel.PYC, error) {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&pycDatamodel.PYC{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return nil, internal.TranslateDBError(res.Error, "pyc")
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, pyc.ErrInvalidTransition
	}
	return r.GetByID(ctx, id)
}

func (r *PYCRepository) Delete(ctx context.Context, id string, from []string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND status IN ?", id, from).Delete(&pycDatamodel.PYC{})
	if res.Error != nil {
		return internal.TranslateDBError(res.Error, "pyc")
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return pyc.ErrInvalidTransition
	}
	return nil
}
