package pyc

import (
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/core/docid"
	pycDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/pyc"
)

const (
	Root     = "/dashboard/pyc"
	IDPrefix = "PYC"
)

var (
	Filterable = []string{"status", "author_email", "approver_email", "project_id"}
	Updatable  = []string{"title", "project_id", "approver_email", "details"}

	Statuses = []string{
		pycDatamodel.StatusDraft,
		pycDatamodel.StatusPending,
		pycDatamodel.StatusApproved,
		pycDatamodel.StatusRejected,
	}

	// Editable are the states in which the author may still change the request.
	Editable = []string{pycDatamodel.StatusDraft, pycDatamodel.StatusRejected}
)

var (
	ErrPYCNotFound       = internal.NewNotFoundError("pyc not found", internal.ErrCodeRecordNotFound)
	ErrNotAuthor         = internal.NewForbiddenError("only the author can change this pyc", internal.ErrCodeUnauthorizedUser)
	ErrNotApprover       = internal.NewForbiddenError("only the assigned approver can decide this pyc", internal.ErrCodeUnauthorizedUser)
	ErrInvalidTransition = internal.NewValidationError("pyc status does not allow this action", internal.ErrCodeInvalidStatus)
)

func Path(id string) string {
	return Root + "/" + url.PathEscape(id)
}

// NewPYC starts a draft authored by authorEmail. An empty dto.ID is replaced
// with a generated document number.
func NewPYC(authorEmail string, dto CreatePYCDTO, now time.Time) *pycDatamodel.PYC {
	p := &pycDatamodel.PYC{
		ID:            strings.TrimSpace(dto.ID),
		Title:         strings.TrimSpace(dto.Title),
		AuthorEmail:   strings.ToLower(authorEmail),
		ProjectID:     nonEmpty(dto.ProjectID),
		ApproverEmail: lowerNonEmpty(dto.ApproverEmail),
		Details:       dto.Details,
		Status:        pycDatamodel.StatusDraft,
	}
	if p.ID == "" {
		p.ID = docid.New(IDPrefix, now)
	}
	if p.Details == nil {
		p.Details = pycDatamodel.Lines{}
	}
	return p
}

func isEditable(status string) bool {
	for _, s := range Editable {
		if s == status {
			return true
		}
	}
	return false
}

func sameEmail(a string, b *string) bool {
	return b != nil && strings.EqualFold(a, *b)
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

func lowerNonEmpty(s *string) *string {
	v := nonEmpty(s)
	if v == nil {
		return nil
	}
	lower := strings.ToLower(*v)
	return &lower
}
