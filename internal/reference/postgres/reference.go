package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/frahmantamala/business-management/internal"
	referenceDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/reference"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/reference"
	"gorm.io/gorm"
)

// Store serves one reference table backed by model T.
type Store[T any] struct {
	db     *gorm.DB
	entity string
	spec   query.Spec
}

func NewStore[T any](db *gorm.DB, table reference.Table, batchSize int) *Store[T] {
	return &Store[T]{db: db, entity: table.Name, spec: table.Spec(batchSize)}
}

// NewStores registers a store for every configured table.
func NewStores(db *gorm.DB, batchSize int) map[string]reference.Store {
	stores := map[string]reference.Store{}
	add := func(name string, build func(reference.Table) reference.Store) {
		t, err := reference.Lookup(name)
		if err != nil {
			panic("reference table not configured: " + name)
		}
		stores[name] = build(t)
	}
	add("branches", func(t reference.Table) reference.Store {
		return NewStore[referenceDatamodel.Branch](db, t, batchSize)
	})
	add("departments", func(t reference.Table) reference.Store {
		return NewStore[referenceDatamodel.Department](db, t, batchSize)
	})
	add("job_positions", func(t reference.Table) reference.Store {
		return NewStore[referenceDatamodel.JobPosition](db, t, batchSize)
	})
	add("job_levels", func(t reference.Table) reference.Store {
		return NewStore[referenceDatamodel.JobLevel](db, t, batchSize)
	})
	add("job_functions", func(t reference.Table) reference.Store {
		return NewStore[referenceDatamodel.JobFunction](db, t, batchSize)
	})
	add("warehouses", func(t reference.Table) reference.Store {
		return NewStore[referenceDatamodel.Warehouse](db, t, batchSize)
	})
	add("suppliers", func(t reference.Table) reference.Store {
		return NewStore[referenceDatamodel.Supplier](db, t, batchSize)
	})
	return stores
}

func (s *Store[T]) List(ctx context.Context, f query.Filter, p query.Page) (query.Result[any], error) {
	res, err := query.List[T](ctx, s.db, s.spec, f, p)
	if err != nil {
		return query.Result[any]{}, internal.TranslateDBError(err, s.entity)
	}
	out := query.Result[any]{Data: make([]any, len(res.Data)), Count: res.Count}
	for i := range res.Data {
		out.Data[i] = &res.Data[i]
	}
	return out, nil
}

func (s *Store[T]) get(ctx context.Context, id int64) (*T, error) {
	row := new(T)
	err := s.db.WithContext(ctx).Where("id = ?", id).First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reference.ErrRowNotFound
	}
	if err != nil {
		return nil, internal.TranslateDBError(err, s.entity)
	}
	return row, nil
}

func (s *Store[T]) Get(ctx context.Context, id int64) (any, error) {
	return s.get(ctx, id)
}

// Create fills a fresh model from the validated fields through its JSON tags.
func (s *Store[T]) Create(ctx context.Context, fields map[string]any) (any, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode fields", err)
	}
	row := new(T)
	if err := json.Unmarshal(raw, row); err != nil {
		return nil, internal.NewInternalError("failed to decode fields", err)
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, internal.TranslateDBError(err, s.entity)
	}
	return row, nil
}

func (s *Store[T]) Update(ctx context.Context, id int64, fields map[string]any) (any, error) {
	res := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, internal.TranslateDBError(res.Error, s.entity)
	}
	if res.RowsAffected == 0 {
		return nil, reference.ErrRowNotFound
	}
	return s.get(ctx, id)
}

func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return internal.TranslateDBError(res.Error, s.entity)
	}
	if res.RowsAffected == 0 {
		return reference.ErrRowNotFound
	}
	return nil
}

func (s *Store[T]) Parent(ctx context.Context, id int64) (*int64, error) {
	var row struct {
		ParentID *int64 `gorm:"column:parent_id"`
	}
	err := s.db.WithContext(ctx).Model(new(T)).Select("parent_id").Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reference.ErrRowNotFound
	}
	if err != nil {
		return nil, internal.TranslateDBError(err, s.entity)
	}
	return row.ParentID, nil
}

func (s *Store[T]) CountChildren(ctx context.Context, id int64) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(new(T)).Where("parent_id = ?", id).Count(&n).Error; err != nil {
		return 0, internal.TranslateDBError(err, s.entity)
	}
	return n, nil
}
