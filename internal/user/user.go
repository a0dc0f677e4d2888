package user

import (
	"net/url"
	"strings"

	"github.com/frahmantamala/business-management/internal"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"github.com/frahmantamala/business-management/internal/personnel"
)

// Filterable are the equality filters accepted by List.
var Filterable = []string{"department", "position", "access_level", "work_status"}

// Updatable are the columns a partial update may touch. Email is the key and
// project_ids goes through AssignProject/RemoveProject.
var Updatable = []string{"full_name", "avatar_url", "department", "position", "access_level", "work_status"}

var (
	ErrUserNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeRecordNotFound)
	ErrUserExists   = internal.NewConflictError("user already exists", internal.ErrCodeDuplicateRecord)
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Path is the view of one person, stale after any change to them.
func Path(email string) string {
	return personnel.Root + "/" + url.PathEscape(email)
}

func projectPath(projectID string) string {
	return "/dashboard/projects/" + url.PathEscape(projectID)
}

func NewUser(dto CreateUserDTO) *userDatamodel.User {
	u := &userDatamodel.User{
		Email:       NormalizeEmail(dto.Email),
		FullName:    strings.TrimSpace(dto.FullName),
		AvatarURL:   dto.AvatarURL,
		Department:  dto.Department,
		Position:    dto.Position,
		AccessLevel: dto.AccessLevel,
		WorkStatus:  dto.WorkStatus,
		ProjectIDs:  dto.ProjectIDs,
	}
	if u.AccessLevel == 0 {
		u.AccessLevel = userDatamodel.AccessStaff
	}
	if u.WorkStatus == "" {
		u.WorkStatus = userDatamodel.WorkStatusActive
	}
	if u.ProjectIDs == nil {
		u.ProjectIDs = []string{}
	}
	return u
}
