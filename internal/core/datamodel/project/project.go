package project

import "time"

const (
	StatusPlanning  = "planning"
	StatusActive    = "active"
	StatusOnHold    = "on_hold"
	StatusCompleted = "completed"
)

type Project struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Location  string    `gorm:"column:location" json:"location,omitempty"`
	Status    string    `gorm:"column:status;not null;default:planning" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

type Item struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	ProjectID string    `gorm:"column:project_id;not null;index" json:"project_id"`
	WBS       string    `gorm:"column:wbs;not null" json:"wbs"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Unit      string    `gorm:"column:unit" json:"unit,omitempty"`
	Quantity  float64   `gorm:"column:quantity;not null;default:0" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Item) TableName() string {
	return "project_items"
}
