package dntt

import (
	"strings"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/core/common/validation"
	dnttDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/dntt"
)

type CreateDNTTDTO struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	Amount    int64   `json:"amount"`
	ProjectID *string `json:"project_id,omitempty"`
}

func (dto CreateDNTTDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("id", dto.ID).MaxLength(50)
	v.Field("title", dto.Title).Required().MaxLength(255)
	v.Field("amount", dto.Amount).MinInt(1, internal.ErrCodeInvalidAmount)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateDNTTDTO struct {
	Title     *string `json:"title,omitempty"`
	Amount    *int64  `json:"amount,omitempty"`
	ProjectID *string `json:"project_id,omitempty"`
}

func (dto UpdateDNTTDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Title != nil {
		v.Field("title", dto.Title).Required().MaxLength(255)
	}
	v.Field("amount", dto.Amount).MinInt(1, internal.ErrCodeInvalidAmount)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (dto UpdateDNTTDTO) Fields() map[string]any {
	fields := map[string]any{}
	if dto.Title != nil {
		fields["title"] = strings.TrimSpace(*dto.Title)
	}
	if dto.Amount != nil {
		fields["amount"] = *dto.Amount
	}
	if dto.ProjectID != nil {
		fields["project_id"] = nonEmpty(dto.ProjectID)
	}
	return fields
}

type DecisionDTO struct {
	Note string `json:"note,omitempty"`
}

type Response struct {
	dnttDatamodel.DNTT
	RequesterName string `json:"requester_name"`
}
