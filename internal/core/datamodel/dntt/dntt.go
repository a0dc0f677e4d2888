package dntt

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusPaid     = "paid"
)

// DNTT amounts are whole VND.
type DNTT struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	Title          string    `gorm:"column:title;not null" json:"title"`
	Amount         int64     `gorm:"column:amount;not null" json:"amount"`
	RequesterEmail string    `gorm:"column:requester_email;not null;index" json:"requester_email"`
	ProjectID      *string   `gorm:"column:project_id" json:"project_id,omitempty"`
	Status         string    `gorm:"column:status;not null;default:pending" json:"status"`
	Note           string    `gorm:"column:note" json:"note,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DNTT) TableName() string {
	return "dntt"
}
