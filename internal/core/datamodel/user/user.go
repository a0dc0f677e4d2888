package user

import (
	"time"

	"github.com/lib/pq"
)

// Access levels, lower is more privileged.
const (
	AccessAdmin    = 1
	AccessDirector = 2
	AccessManager  = 3
	AccessStaff    = 4
)

const (
	WorkStatusActive   = "active"
	WorkStatusInactive = "inactive"
	WorkStatusLeave    = "leave"
)

type User struct {
	Email       string         `gorm:"column:email;primaryKey" json:"email"`
	FullName    string         `gorm:"column:full_name;not null" json:"full_name"`
	AvatarURL   string         `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Department  string         `gorm:"column:department" json:"department,omitempty"`
	Position    string         `gorm:"column:position" json:"position,omitempty"`
	AccessLevel int            `gorm:"column:access_level;not null;default:4" json:"access_level"`
	WorkStatus  string         `gorm:"column:work_status;not null;default:active" json:"work_status"`
	ProjectIDs  pq.StringArray `gorm:"column:project_ids;type:text[]" json:"project_ids"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) InProject(projectID string) bool {
	for _, id := range u.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}
