package notification

import "time"

const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarning = "warning"
	TypeError   = "error"
)

// Notification is read and written with sqlx, hence the db tags.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserEmail string    `db:"user_email" json:"user_email"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	Link      *string   `db:"link" json:"link,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
