// Package query holds the list contract shared by every entity repository:
// equality, array-membership and substring filters, 1-indexed offset paging,
// and the page-size-zero "return everything" mode fetched in fixed chunks.
package query

import (
	"context"
	"fmt"
	"math"
	"strings"

	errors "github.com/frahmantamala/business-management/internal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// AllRows as a page size asks for every matching row.
const AllRows = 0

const (
	DefaultBatchSize   = 1000
	DefaultConcurrency = 4
	DefaultPageSize    = 20
	MaxPageSize        = 500
	// MaxOffset bounds Page.Offset; any page past it is empty.
	MaxOffset = math.MaxInt32
)

type Filter struct {
	// Equals maps column -> value; a nil value matches NULL.
	Equals map[string]any
	// Contains maps an array column -> element that must be present in it.
	Contains map[string]string
	// Search is matched case-insensitively as a substring of Spec.SearchColumns.
	Search string
}

func (f Filter) IsEmpty() bool {
	return len(f.Equals) == 0 && len(f.Contains) == 0 && f.Search == ""
}

type Page struct {
	Page     int
	PageSize int
}

// Offset is the number of rows before the page, clamped to MaxOffset so
// huge page numbers cannot wrap around to the first page.
func (p Page) Offset() int {
	if p.Page < 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > MaxOffset/p.PageSize {
		return MaxOffset
	}
	return (p.Page - 1) * p.PageSize
}

type Result[T any] struct {
	Data  []T   `json:"data"`
	Count int64 `json:"count"`
}

// Spec is the per-table listing configuration. Column names used by filters
// must appear in Filterable or ArrayColumns; they are never taken verbatim
// from user input otherwise.
type Spec struct {
	OrderBy       string
	Key           string
	SearchColumns []string
	Filterable    []string
	ArrayColumns  []string
	BatchSize     int
	Concurrency   int
}

func (s Spec) batchSize() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return DefaultBatchSize
}

func (s Spec) concurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return DefaultConcurrency
}

func (s Spec) allowed(column string, set []string) bool {
	for _, c := range set {
		if c == column {
			return true
		}
	}
	return false
}

// List runs the filtered count and page fetch for model T.
func List[T any](ctx context.Context, db *gorm.DB, spec Spec, f Filter, p Page) (Result[T], error) {
	if p.PageSize < 0 {
		return Result[T]{}, errors.NewValidationError("page_size must not be negative", errors.ErrCodeValidationFailed)
	}

	scope, err := spec.scope(db, f)
	if err != nil {
		return Result[T]{}, err
	}
	base := func() *gorm.DB {
		return scope(db.WithContext(ctx).Model(new(T)))
	}

	var count int64
	if err := base().Count(&count).Error; err != nil {
		return Result[T]{}, fmt.Errorf("count rows: %w", err)
	}

	res := Result[T]{Data: make([]T, 0), Count: count}
	if count == 0 {
		return res, nil
	}

	if p.PageSize == AllRows {
		rows, err := fetchAll[T](ctx, base, spec, count)
		if err != nil {
			return Result[T]{}, err
		}
		res.Data = rows
		return res, nil
	}

	offset := p.Offset()
	if int64(offset) >= count {
		return res, nil
	}
	if err := spec.order(base()).Offset(offset).Limit(p.PageSize).Find(&res.Data).Error; err != nil {
		return Result[T]{}, fmt.Errorf("fetch page: %w", err)
	}
	return res, nil
}

// fetchAll pulls count rows in chunks of spec.BatchSize. Chunks are fetched
// concurrently and stitched in order; if the last chunk comes back full the
// table grew after the count and fetching continues until a short chunk.
func fetchAll[T any](ctx context.Context, base func() *gorm.DB, spec Spec, count int64) ([]T, error) {
	batch := spec.batchSize()
	chunks := int((count + int64(batch) - 1) / int64(batch))
	parts := make([][]T, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(spec.concurrency())
	for i := 0; i < chunks; i++ {
		i := i
		g.Go(func() error {
			var part []T
			err := spec.order(base().WithContext(gctx)).Offset(i * batch).Limit(batch).Find(&part).Error
			if err != nil {
				return fmt.Errorf("fetch chunk %d: %w", i, err)
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]T, 0, count)
	for _, part := range parts {
		rows = append(rows, part...)
	}

	last := len(parts[chunks-1])
	offset := chunks * batch
	for last == batch {
		var part []T
		if err := spec.order(base()).Offset(offset).Limit(batch).Find(&part).Error; err != nil {
			return nil, fmt.Errorf("fetch trailing chunk: %w", err)
		}
		rows = append(rows, part...)
		last = len(part)
		offset += batch
	}
	return rows, nil
}

func (s Spec) order(tx *gorm.DB) *gorm.DB {
	if s.OrderBy != "" {
		tx = tx.Order(s.OrderBy)
	}
	if s.Key != "" && !strings.HasPrefix(s.OrderBy, s.Key+" ") && s.OrderBy != s.Key {
		tx = tx.Order(s.Key)
	}
	return tx
}

func (s Spec) scope(db *gorm.DB, f Filter) (func(*gorm.DB) *gorm.DB, error) {
	var conds []func(*gorm.DB) *gorm.DB
	dialect := db.Dialector.Name()

	for column, value := range f.Equals {
		if !s.allowed(column, s.Filterable) {
			return nil, errors.NewValidationError(fmt.Sprintf("unknown filter %q", column), errors.ErrCodeValidationFailed)
		}
		column, value := column, value
		conds = append(conds, func(tx *gorm.DB) *gorm.DB {
			if value == nil {
				return tx.Where(column + " IS NULL")
			}
			return tx.Where(column+" = ?", value)
		})
	}

	for column, element := range f.Contains {
		if !s.allowed(column, s.ArrayColumns) {
			return nil, errors.NewValidationError(fmt.Sprintf("unknown array filter %q", column), errors.ErrCodeValidationFailed)
		}
		column, element := column, element
		conds = append(conds, func(tx *gorm.DB) *gorm.DB {
			if dialect == "postgres" {
				return tx.Where("? = ANY("+column+")", element)
			}
			// text[] values are stored as {"a","b"} outside Postgres.
			return tx.Where(column+" LIKE ? ESCAPE '\\'", `%"`+escapeLike(element)+`"%`)
		})
	}

	if search := strings.TrimSpace(f.Search); search != "" && len(s.SearchColumns) > 0 {
		op := "LIKE"
		if dialect == "postgres" {
			op = "ILIKE"
		}
		pattern := "%" + escapeLike(search) + "%"
		clauses := make([]string, len(s.SearchColumns))
		args := make([]any, len(s.SearchColumns))
		for i, c := range s.SearchColumns {
			clauses[i] = fmt.Sprintf("%s %s ? ESCAPE '\\'", c, op)
			args[i] = pattern
		}
		where := "(" + strings.Join(clauses, " OR ") + ")"
		conds = append(conds, func(tx *gorm.DB) *gorm.DB {
			return tx.Where(where, args...)
		})
	}

	return func(tx *gorm.DB) *gorm.DB {
		for _, c := range conds {
			tx = c(tx)
		}
		return tx
	}, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Patch keeps only the allowed columns of a partial update. An empty result is
// a validation error: there is nothing to update.
func Patch(fields map[string]any, allowed ...string) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		for _, a := range allowed {
			if k == a {
				out[k] = v
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, errors.NewValidationError("no updatable fields supplied", errors.ErrCodeValidationFailed)
	}
	return out, nil
}
