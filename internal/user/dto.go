package user

import (
	"strings"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
)

var workStatuses = []string{
	userDatamodel.WorkStatusActive,
	userDatamodel.WorkStatusInactive,
	userDatamodel.WorkStatusLeave,
}

type CreateUserDTO struct {
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	Department  string   `json:"department,omitempty"`
	Position    string   `json:"position,omitempty"`
	AccessLevel int      `json:"access_level,omitempty"`
	WorkStatus  string   `json:"work_status,omitempty"`
	ProjectIDs  []string `json:"project_ids,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", strings.TrimSpace(dto.Email)).Required().Email()
	v.Field("full_name", dto.FullName).Required().MaxLength(200)
	if dto.AccessLevel != 0 {
		v.Field("access_level", dto.AccessLevel).
			MinInt(userDatamodel.AccessAdmin, internal.ErrCodeValidationFailed).
			MaxInt(userDatamodel.AccessStaff, internal.ErrCodeValidationFailed)
	}
	v.Field("work_status", dto.WorkStatus).OneOf(workStatuses...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateUserDTO is a partial update; nil fields are left untouched.
type UpdateUserDTO struct {
	FullName    *string `json:"full_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Department  *string `json:"department,omitempty"`
	Position    *string `json:"position,omitempty"`
	AccessLevel *int    `json:"access_level,omitempty"`
	WorkStatus  *string `json:"work_status,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	v := validation.NewValidator()
	if dto.FullName != nil {
		v.Field("full_name", dto.FullName).Required().MaxLength(200)
	}
	v.Field("access_level", dto.AccessLevel).
		MinInt(userDatamodel.AccessAdmin, internal.ErrCodeValidationFailed).
		MaxInt(userDatamodel.AccessStaff, internal.ErrCodeValidationFailed)
	v.Field("work_status", dto.WorkStatus).OneOf(workStatuses...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (dto UpdateUserDTO) Fields() map[string]any {
	fields := map[string]any{}
	if dto.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*dto.FullName)
	}
	if dto.AvatarURL != nil {
		fields["avatar_url"] = *dto.AvatarURL
	}
	if dto.Department != nil {
		fields["department"] = *dto.Department
	}
	if dto.Position != nil {
		fields["position"] = *dto.Position
	}
	if dto.AccessLevel != nil {
		fields["access_level"] = *dto.AccessLevel
	}
	if dto.WorkStatus != nil {
		fields["work_status"] = *dto.WorkStatus
	}
	return fields
}

type AssignProjectDTO struct {
	ProjectID string `json:"project_id"`
}

func (dto AssignProjectDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("project_id", dto.ProjectID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// OptionResponse is one entry of the personnel dropdown.
type OptionResponse struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

func ToOptions(users []*userDatamodel.User) []OptionResponse {
	out := make([]OptionResponse, 0, len(users))
	for _, u := range users {
		if u.WorkStatus == userDatamodel.WorkStatusInactive {
			continue
		}
		out = append(out, OptionResponse{
			Email:      u.Email,
			FullName:   u.FullName,
			Department: u.Department,
			Position:   u.Position,
		})
	}
	return out
}
