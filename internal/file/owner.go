package file

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/frahmantamala/business-management/internal"
)

// Kind names a table that may own files.
type Kind string

const (
	KindProject     Kind = "projects"
	KindProjectItem Kind = "project_items"
	KindPYC         Kind = "pyc"
	KindDNTT        Kind = "dntt"
	KindUser        Kind = "users"
	KindWarehouse   Kind = "warehouses"
)

var Kinds = []Kind{KindProject, KindProjectItem, KindPYC, KindDNTT, KindUser, KindWarehouse}

// dashboard maps a kind to the page that shows its attachments.
var dashboard = map[Kind]string{
	KindProject:     "/dashboard/projects",
	KindProjectItem: "/dashboard/projects/items",
	KindPYC:         "/dashboard/pyc",
	KindDNTT:        "/dashboard/dntt",
	KindUser:        "/dashboard/personnel",
	KindWarehouse:   "/dashboard/system/warehouses",
}

// Owner identifies the record a file is attached to. It is stored as the
// (table_name, ref_id) column pair.
type Owner struct {
	Kind Kind
	ID   string
}

func ParseOwner(kind, id string) (Owner, error) {
	k := Kind(strings.TrimSpace(kind))
	if _, ok := dashboard[k]; !ok {
		names := make([]string, len(Kinds))
		for i, k := range Kinds {
			names[i] = string(k)
		}
		message := fmt.Sprintf("table_name must be one of: %s", strings.Join(names, ", "))
		return Owner{}, internal.NewValidationFieldError("table_name", message, internal.ErrCodeInvalidOwner)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Owner{}, internal.NewValidationFieldError("ref_id", "ref_id is required", internal.ErrCodeValidationFailed)
	}
	return Owner{Kind: k, ID: id}, nil
}

func (o Owner) String() string {
	return string(o.Kind) + ":" + o.ID
}

// Path is the dashboard page of the owning record.
func (o Owner) Path() string {
	return dashboard[o.Kind] + "/" + url.PathEscape(o.ID)
}
