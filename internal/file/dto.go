package file

import (
	"strings"

	"github.com/frahmantamala/business-management/internal/core/common/validation"
)

type CreateFileDTO struct {
	TableName   string `json:"table_name"`
	RefID       string `json:"ref_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url"`
}

func (dto CreateFileDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("url", dto.URL).Required().MaxLength(2048)
	v.Field("type", dto.Type).OneOf(Types...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateFileDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Type        *string `json:"type,omitempty"`
}

func (dto UpdateFileDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", dto.Name).Required().MaxLength(255)
	}
	v.Field("type", dto.Type).OneOf(Types...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (dto UpdateFileDTO) Fields() map[string]any {
	fields := map[string]any{}
	if dto.Name != nil {
		fields["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Description != nil {
		fields["description"] = *dto.Description
	}
	if dto.Type != nil {
		fields["type"] = *dto.Type
	}
	return fields
}
