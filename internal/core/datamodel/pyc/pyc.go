package pyc

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type PYC struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	AuthorEmail   string    `gorm:"column:author_email;not null;index" json:"author_email"`
	ProjectID     *string   `gorm:"column:project_id" json:"project_id,omitempty"`
	ApproverEmail *string   `gorm:"column:approver_email" json:"approver_email,omitempty"`
	Details       Lines     `gorm:"column:details;type:jsonb" json:"details"`
	Status        string    `gorm:"column:status;not null;default:draft" json:"status"`
	Note          string    `gorm:"column:note" json:"note,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PYC) TableName() string {
	return "pyc"
}

type Line struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit,omitempty"`
	Quantity float64 `json:"quantity"`
	Note     string  `json:"note,omitempty"`
}

// Lines is stored as a JSON document.
type Lines []Line

func (l Lines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *Lines) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = Lines{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("pyc lines: unsupported source %T", src)
	}
	return json.Unmarshal(raw, l)
}
