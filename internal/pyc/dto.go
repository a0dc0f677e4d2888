package pyc

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/business-management/internal"
	pycDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/pyc"
	"github.com/frahmantamala/business-management/internal/core/common/validation"
)

type CreatePYCDTO struct {
	ID            string             `json:"id,omitempty"`
	Title         string             `json:"title"`
	ProjectID     *string            `json:"project_id,omitempty"`
	ApproverEmail *string            `json:"approver_email,omitempty"`
	Details       pycDatamodel.Lines `json:"details"`
}

func (dto CreatePYCDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("id", dto.ID).MaxLength(50)
	v.Field("title", dto.Title).Required().MaxLength(255)
	v.Field("approver_email", dto.ApproverEmail).Email()
	validateLines(v, dto.Details)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdatePYCDTO struct {
	Title         *string             `json:"title,omitempty"`
	ProjectID     *string             `json:"project_id,omitempty"`
	ApproverEmail *string             `json:"approver_email,omitempty"`
	Details       *pycDatamodel.Lines `json:"details,omitempty"`
}

func (dto UpdatePYCDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Title != nil {
		v.Field("title", dto.Title).Required().MaxLength(255)
	}
	v.Field("approver_email", dto.ApproverEmail).Email()
	if dto.Details != nil {
		validateLines(v, *dto.Details)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Fields maps an empty project or approver to NULL.
func (dto UpdatePYCDTO) Fields() map[string]any {
	fields := map[string]any{}
	if dto.Title != nil {
		fields["title"] = strings.TrimSpace(*dto.Title)
	}
	if dto.ProjectID != nil {
		fields["project_id"] = nonEmpty(dto.ProjectID)
	}
	if dto.ApproverEmail != nil {
		fields["approver_email"] = lowerNonEmpty(dto.ApproverEmail)
	}
	if dto.Details != nil {
		fields["details"] = *dto.Details
	}
	return fields
}

type DecisionDTO struct {
	Note string `json:"note,omitempty"`
}

func validateLines(v *validation.ValidationBuilder, lines pycDatamodel.Lines) {
	for i, line := range lines {
		prefix := fmt.Sprintf("details[%d].", i)
		v.Field(prefix+"name", line.Name).Required().MaxLength(255)
		quantity := line.Quantity
		field := prefix + "quantity"
		v.Field(field, quantity).Custom(func(interface{}) *internal.AppError {
			if quantity <= 0 {
				return internal.NewValidationFieldError(field, field+" must be greater than 0", internal.ErrCodeValidationFailed)
			}
			return nil
		})
	}
}

// Response adds display names resolved from the personnel directory.
type Response struct {
	pycDatamodel.PYC
	AuthorName   string `json:"author_name"`
	ApproverName string `json:"approver_name,omitempty"`
}
