package project

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/core/common/validation"
)

type CreateProjectDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (dto CreateProjectDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("id", dto.ID).Required().MaxLength(50)
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("status", dto.Status).OneOf(Statuses...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateProjectDTO struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
	Status   *string `json:"status,omitempty"`
}

func (dto UpdateProjectDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", dto.Name).Required().MaxLength(255)
	}
	v.Field("status", dto.Status).OneOf(Statuses...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (dto UpdateProjectDTO) Fields() map[string]any {
	fields := map[string]any{}
	if dto.Name != nil {
		fields["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Location != nil {
		fields["location"] = *dto.Location
	}
	if dto.Status != nil {
		fields["status"] = *dto.Status
	}
	return fields
}

type CreateItemDTO struct {
	WBS      string  `json:"wbs"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit,omitempty"`
	Quantity float64 `json:"quantity"`
}

func (dto CreateItemDTO) validator(prefix string) *validation.ValidationBuilder {
	v := validation.NewValidator()
	v.Field(prefix+"wbs", dto.WBS).Required().MaxLength(50)
	v.Field(prefix+"name", dto.Name).Required().MaxLength(255)
	v.Field(prefix+"quantity", dto.Quantity).Custom(nonNegative(prefix + "quantity"))
	return v
}

func (dto CreateItemDTO) Validate() error {
	if err := dto.validator("").Validate(); err != nil {
		return err
	}
	return nil
}

// BulkItemsDTO inserts all items or none.
type BulkItemsDTO struct {
	Items []CreateItemDTO `json:"items"`
}

func (dto BulkItemsDTO) Validate() error {
	if len(dto.Items) == 0 {
		return internal.NewValidationFieldError("items", "items must not be empty", internal.ErrCodeValidationFailed)
	}
	var all []internal.ValidationError
	for i, item := range dto.Items {
		if err := item.validator(fmt.Sprintf("items[%d].", i)).Validate(); err != nil {
			all = append(all, err.Details.(internal.ValidationErrors).Errors...)
		}
	}
	if len(all) > 0 {
		return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: all})
	}
	return nil
}

type UpdateItemDTO struct {
	WBS      *string  `json:"wbs,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
}

func (dto UpdateItemDTO) Validate() error {
	v := validation.NewValidator()
	if dto.WBS != nil {
		v.Field("wbs", dto.WBS).Required().MaxLength(50)
	}
	if dto.Name != nil {
		v.Field("name", dto.Name).Required().MaxLength(255)
	}
	if dto.Quantity != nil {
		v.Field("quantity", *dto.Quantity).Custom(nonNegative("quantity"))
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (dto UpdateItemDTO) Fields() map[string]any {
	fields := map[string]any{}
	if dto.WBS != nil {
		fields["wbs"] = strings.TrimSpace(*dto.WBS)
	}
	if dto.Name != nil {
		fields["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Unit != nil {
		fields["unit"] = *dto.Unit
	}
	if dto.Quantity != nil {
		fields["quantity"] = *dto.Quantity
	}
	return fields
}

func nonNegative(field string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		if q, ok := value.(float64); ok && q < 0 {
			return internal.NewValidationFieldError(field, field+" must not be negative", internal.ErrCodeValidationFailed)
		}
		return nil
	}
}
