package reference

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/revalidate"
)

// Store is one reference table. Rows are returned as the table's model.
type Store interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[any], error)
	Get(ctx context.Context, id int64) (any, error)
	Create(ctx context.Context, fields map[string]any) (any, error)
	Update(ctx context.Context, id int64, fields map[string]any) (any, error)
	Delete(ctx context.Context, id int64) error

	// Parent and CountChildren back the department hierarchy.
	Parent(ctx context.Context, id int64) (*int64, error)
	CountChildren(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	stores      map[string]Store
	revalidator revalidate.Revalidator
	logger      *slog.Logger
}

func NewService(stores map[string]Store, revalidator revalidate.Revalidator, logger *slog.Logger) *Service {
	return &Service{
		stores:      stores,
		revalidator: revalidator,
		logger:      logger,
	}
}

// Tables lists the configured tables that have a store.
func (s *Service) Tables() []Table {
	out := make([]Table, 0, len(s.stores))
	for _, t := range Tables {
		if _, ok := s.stores[t.Name]; ok {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) table(name string) (Table, Store, error) {
	t, err := Lookup(name)
	if err != nil {
		return Table{}, nil, err
	}
	store, ok := s.stores[name]
	if !ok {
		return Table{}, nil, ErrTableNotFound
	}
	return t, store, nil
}

func (s *Service) List(ctx context.Context, table string, f query.Filter, p query.Page) (query.Result[any], error) {
	t, store, err := s.table(table)
	if err != nil {
		return query.Result[any]{}, err
	}
	if f, err = t.Filter(f); err != nil {
		return query.Result[any]{}, err
	}
	return store.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, table string, id int64) (any, error) {
	_, store, err := s.table(table)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, id)
}

func (s *Service) Add(ctx context.Context, table string, body map[string]any) (any, error) {
	t, store, err := s.table(table)
	if err != nil {
		return nil, err
	}
	fields, err := t.Fields(body, false)
	if err != nil {
		return nil, err
	}
	if t.Hierarchical {
		if err := s.checkParent(ctx, store, 0, fields); err != nil {
			return nil, err
		}
	}

	row, err := store.Create(ctx, fields)
	if err != nil {
		s.logger.Warn("Reference: create failed", "table", table, "error", err)
		return nil, err
	}

	s.logger.Info("Reference: created", "table", table)
	s.revalidator.Revalidate(ctx, t.Path())
	return row, nil
}

func (s *Service) Update(ctx context.Context, table string, id int64, body map[string]any) (any, error) {
	t, store, err := s.table(table)
	if err != nil {
		return nil, err
	}
	fields, err := t.Fields(body, true)
	if err != nil {
		return nil, err
	}
	if t.Hierarchical {
		if err := s.checkParent(ctx, store, id, fields); err != nil {
			return nil, err
		}
	}

	row, err := store.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reference: updated", "table", table, "id", id)
	s.revalidator.Revalidate(ctx, t.Path(), t.RowPath(id))
	return row, nil
}

// Delete refuses to orphan child departments.
func (s *Service) Delete(ctx context.Context, table string, id int64) error {
	t, store, err := s.table(table)
	if err != nil {
		return err
	}
	if t.Hierarchical {
		n, err := store.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrHasChildren
		}
	}

	if err := store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Reference: deleted", "table", table, "id", id)
	s.revalidator.Revalidate(ctx, t.Path(), t.RowPath(id))
	return nil
}

// checkParent keeps the hierarchy two levels deep: a parent must exist and be
// top-level, and a row that already has children cannot become a child.
// id is 0 for a row not yet created.
func (s *Service) checkParent(ctx context.Context, store Store, id int64, fields map[string]any) error {
	raw, ok := fields["parent_id"]
	if !ok || raw == nil {
		return nil
	}
	parentID := raw.(int64)

	if parentID == id {
		return hierarchyError("a department cannot be its own parent")
	}
	grandparent, err := store.Parent(ctx, parentID)
	if errors.Is(err, ErrRowNotFound) {
		return hierarchyError("parent department does not exist")
	}
	if err != nil {
		return err
	}
	if grandparent != nil {
		return hierarchyError("departments can only be nested one level deep")
	}

	if id != 0 {
		n, err := store.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return hierarchyError("a department with child departments cannot have a parent")
		}
	}
	return nil
}

func hierarchyError(message string) error {
	return internal.NewValidationFieldError("parent_id", message, internal.ErrCodeInvalidHierarchy)
}
