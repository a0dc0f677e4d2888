package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/business-management/internal"
	dnttDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/dntt"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/dntt"
	"gorm.io/gorm"
)

type DNTTRepository struct {
	db   *gorm.DB
	spec query.Spec
}

func NewDNTTRepository(db *gorm.DB, batchSize int) *DNTTRepository {
	return &DNTTRepository{
		db: db,
		spec: query.Spec{
			OrderBy:       "created_at desc",
			Key:           "id",
			SearchColumns: []string{"id", "title"},
			Filterable:    dntt.Filterable,
			BatchSize:     batchSize,
		},
	}
}

var _ dntt.RepositoryAPI = (*DNTTRepository)(nil)

func (r *DNTTRepository) List(ctx context.Context, f query.Filter, p query.Page) (query.Result[dnttDatamodel.DNTT], error) {
	res, err := query.List[dnttDatamodel.DNTT](ctx, r.db, r.spec, f, p)
	if err != nil {
		return res, internal.TranslateDBError(err, "dntt")
	}
	return res, nil
}

func (r *DNTTRepository) GetByID(ctx context.Context, id string) (*dnttDatamodel.DNTT, error) {
	var d dnttDatamodel.DNTT
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dntt.ErrDNTTNotFound
	}
	if err != nil {
		return nil, internal.TranslateDBError(err, "dntt")
	}
	return &d, nil
}

func (r *DNTTRepository) Create(ctx context.Context, d *dnttDatamodel.DNTT) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return internal.TranslateDBError(err, "dntt")
	}
	return nil
}

func (r *DNTTRepository) Transition(ctx context.Context, id string, from []string, fields map[string]any) (*dnttDatamodel.DNTT, error) {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&dnttDatamodel.DNTT{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return nil, internal.TranslateDBError(res.Error, "dntt")
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, dntt.ErrInvalidTransition
	}
	return r.GetByID(ctx, id)
}

func (r *DNTTRepository) Delete(ctx context.Context, id string, from []string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND status IN ?", id, from).Delete(&dnttDatamodel.DNTT{})
	if res.Error != nil {
		return internal.TranslateDBError(res.Error, "dntt")
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return dntt.ErrInvalidTransition
	}
	return nil
}
