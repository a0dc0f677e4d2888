// Package reference serves the system lookup tables (branches, departments,
// job positions and the like) through one table-driven list/add/edit/delete
// flow.
package reference

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/core/query"
)

const Root = "/dashboard/system"

type ColumnType string

const (
	ColumnText ColumnType = "text"
	// ColumnID holds a numeric reference to another row of the same kind.
	ColumnID ColumnType = "id"
	// ColumnRef holds a project code; empty means none.
	ColumnRef ColumnType = "ref"
)

type Column struct {
	Name      string     `json:"name"`
	Label     string     `json:"label"`
	Type      ColumnType `json:"type"`
	Required  bool       `json:"required,omitempty"`
	MaxLength int        `json:"max_length,omitempty"`
}

type Table struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	Columns      []Column `json:"columns"`
	Filterable   []string `json:"filterable,omitempty"`
	Hierarchical bool     `json:"hierarchical,omitempty"`
}

var (
	code        = Column{Name: "code", Label: "Mã", Type: ColumnText, Required: true, MaxLength: 50}
	name        = Column{Name: "name", Label: "Tên", Type: ColumnText, Required: true, MaxLength: 255}
	description = Column{Name: "description", Label: "Mô tả", Type: ColumnText, MaxLength: 1000}
	address     = Column{Name: "address", Label: "Địa chỉ", Type: ColumnText, MaxLength: 500}
)

var Tables = []Table{
	{Name: "branches", Label: "Chi nhánh", Columns: []Column{code, name, description, address}},
	{
		Name:         "departments",
		Label:        "Phòng ban",
		Columns:      []Column{code, name, description, {Name: "parent_id", Label: "Phòng ban cha", Type: ColumnID}},
		Filterable:   []string{"parent_id"},
		Hierarchical: true,
	},
	{Name: "job_positions", Label: "Chức vụ", Columns: []Column{code, name, description}},
	{Name: "job_levels", Label: "Cấp bậc", Columns: []Column{code, name, description}},
	{Name: "job_functions", Label: "Chức năng", Columns: []Column{code, name, description}},
	{
		Name:       "warehouses",
		Label:      "Kho",
		Columns:    []Column{code, name, description, {Name: "project_id", Label: "Dự án", Type: ColumnRef, MaxLength: 50}, address},
		Filterable: []string{"project_id"},
	},
	{
		Name:  "suppliers",
		Label: "Nhà cung cấp",
		Columns: []Column{code, name, description,
			{Name: "tax_code", Label: "Mã số thuế", Type: ColumnText, MaxLength: 20},
			{Name: "phone", Label: "Điện thoại", Type: ColumnText, MaxLength: 20},
			address,
		},
	},
}

var (
	ErrTableNotFound = internal.NewNotFoundError("reference table not found", internal.ErrCodeRecordNotFound)
	ErrRowNotFound   = internal.NewNotFoundError("reference row not found", internal.ErrCodeRecordNotFound)
	ErrHasChildren   = internal.NewConflictError("department still has child departments", internal.ErrCodeRecordInUse)
)

func Lookup(table string) (Table, error) {
	for _, t := range Tables {
		if t.Name == table {
			return t, nil
		}
	}
	return Table{}, ErrTableNotFound
}

func (t Table) Path() string {
	return Root + "/" + t.Name
}

func (t Table) RowPath(id int64) string {
	return t.Path() + "/" + strconv.FormatInt(id, 10)
}

func (t Table) column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Spec is the listing configuration of the table.
func (t Table) Spec(batchSize int) query.Spec {
	return query.Spec{
		OrderBy:       "name",
		Key:           "id",
		SearchColumns: []string{"code", "name"},
		Filterable:    t.Filterable,
		BatchSize:     batchSize,
	}
}

// Fields validates a JSON-decoded body against the column config and returns
// values typed for the store. With partial set, absent required columns are
// allowed.
func (t Table) Fields(body map[string]any, partial bool) (map[string]any, error) {
	var errs []internal.ValidationError
	fail := func(field, message string) {
		errs = append(errs, internal.ValidationError{Field: field, Message: message, Code: string(internal.ErrCodeValidationFailed)})
	}

	out := make(map[string]any, len(body))
	for key, raw := range body {
		c, ok := t.column(key)
		if !ok {
			fail(key, fmt.Sprintf("%s is not a column of %s", key, t.Name))
			continue
		}
		v, msg := c.convert(raw)
		if msg != "" {
			fail(key, msg)
			continue
		}
		out[key] = v
	}
	if !partial {
		for _, c := range t.Columns {
			if _, ok := body[c.Name]; c.Required && !ok {
				fail(c.Name, c.Name+" is required")
			}
		}
	}

	if len(errs) > 0 {
		return nil, internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: errs})
	}
	if len(out) == 0 {
		return nil, internal.NewValidationError("no updatable fields supplied", internal.ErrCodeValidationFailed)
	}
	return out, nil
}

func (c Column) convert(raw any) (any, string) {
	switch c.Type {
	case ColumnID:
		switch v := raw.(type) {
		case nil:
			return nil, ""
		case float64:
			if v <= 0 || v != math.Trunc(v) {
				return nil, c.Name + " must be a positive integer"
			}
			return int64(v), ""
		}
		return nil, c.Name + " must be a positive integer"
	case ColumnRef:
		if raw == nil {
			return nil, ""
		}
		s, ok := raw.(string)
		if !ok {
			return nil, c.Name + " must be a string"
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil, ""
		}
		if c.MaxLength > 0 && len([]rune(s)) > c.MaxLength {
			return nil, fmt.Sprintf("%s must not exceed %d characters", c.Name, c.MaxLength)
		}
		return s, ""
	}

	s, ok := raw.(string)
	if raw == nil && !c.Required {
		return "", ""
	}
	if !ok {
		return nil, c.Name + " must be a string"
	}
	s = strings.TrimSpace(s)
	if c.Required && s == "" {
		return nil, c.Name + " is required"
	}
	if c.MaxLength > 0 && len([]rune(s)) > c.MaxLength {
		return nil, fmt.Sprintf("%s must not exceed %d characters", c.Name, c.MaxLength)
	}
	return s, ""
}

// Filter converts query-string filter values to the column types; "null"
// matches rows without a value.
func (t Table) Filter(f query.Filter) (query.Filter, error) {
	for key, raw := range f.Equals {
		c, ok := t.column(key)
		if !ok {
			continue
		}
		s, _ := raw.(string)
		if s == "null" {
			f.Equals[key] = nil
			continue
		}
		if c.Type == ColumnID {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return f, internal.NewValidationFieldError(key, key+" must be an integer or null", internal.ErrCodeValidationFailed)
			}
			f.Equals[key] = n
		}
	}
	return f, nil
}
