package notification

import (
	"strings"

	"github.com/frahmantamala/business-management/internal"
	notificationDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/notification"
)

const Root = "/dashboard/notifications"

var Types = []string{
	notificationDatamodel.TypeInfo,
	notificationDatamodel.TypeSuccess,
	notificationDatamodel.TypeWarning,
	notificationDatamodel.TypeError,
}

var ErrNotificationNotFound = internal.NewNotFoundError("notification not found", internal.ErrCodeRecordNotFound)

// New builds an unread notification for email. An empty link is stored as NULL.
func New(email, title, message, kind, link string) *notificationDatamodel.Notification {
	n := &notificationDatamodel.Notification{
		UserEmail: strings.ToLower(strings.TrimSpace(email)),
		Title:     title,
		Message:   message,
		Type:      kind,
	}
	if n.Type == "" {
		n.Type = notificationDatamodel.TypeInfo
	}
	if link != "" {
		n.Link = &link
	}
	return n
}
