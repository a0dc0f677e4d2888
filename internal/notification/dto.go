package notification

import (
	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/core/common/validation"
)

type CreateNotificationDTO struct {
	UserEmail string `json:"user_email"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type,omitempty"`
	Link      string `json:"link,omitempty"`
}

func (dto CreateNotificationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("user_email", dto.UserEmail).Required().Email()
	v.Field("title", dto.Title).Required().MaxLength(255)
	v.Field("message", dto.Message).Required().MaxLength(2000)
	v.Field("type", dto.Type).OneOf(Types...)
	if dto.Link != "" && dto.Link[0] != '/' {
		v.Field("link", dto.Link).Custom(func(interface{}) *internal.AppError {
			return internal.NewValidationFieldError("link", "link must be a relative path", internal.ErrCodeValidationFailed)
		})
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
