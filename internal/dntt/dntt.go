package dntt

import (
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/core/docid"
	dnttDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/dntt"
)

const (
	Root     = "/dashboard/dntt"
	IDPrefix = "DNTT"
)

var (
	Filterable = []string{"status", "requester_email", "project_id"}
	Updatable  = []string{"title", "amount", "project_id"}

	Statuses = []string{
		dnttDatamodel.StatusPending,
		dnttDatamodel.StatusApproved,
		dnttDatamodel.StatusRejected,
		dnttDatamodel.StatusPaid,
	}
)

var (
	ErrDNTTNotFound      = internal.NewNotFoundError("dntt not found", internal.ErrCodeRecordNotFound)
	ErrNotRequester      = internal.NewForbiddenError("only the requester can change this dntt", internal.ErrCodeUnauthorizedUser)
	ErrInvalidTransition = internal.NewValidationError("dntt status does not allow this action", internal.ErrCodeInvalidStatus)
)

func Path(id string) string {
	return Root + "/" + url.PathEscape(id)
}

func NewDNTT(requester string, dto CreateDNTTDTO, now time.Time) *dnttDatamodel.DNTT {
	d := &dnttDatamodel.DNTT{
		ID:             strings.TrimSpace(dto.ID),
		Title:          strings.TrimSpace(dto.Title),
		Amount:         dto.Amount,
		RequesterEmail: strings.ToLower(requester),
		ProjectID:      nonEmpty(dto.ProjectID),
		Status:         dnttDatamodel.StatusPending,
	}
	if d.ID == "" {
		d.ID = docid.New(IDPrefix, now)
	}
	return d
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
