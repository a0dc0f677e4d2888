package pyc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/business-management/internal"
	notificationDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/notification"
	pycDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/pyc"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/notification"
	"github.com/frahmantamala/business-management/internal/revalidate"
)

type RepositoryAPI interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[pycDatamodel.PYC], error)
	GetByID(ctx context.Context, id string) (*pycDatamodel.PYC, error)
	Create(ctx context.Context, p *pycDatamodel.PYC) error
	// Transition applies fields only while the row is in one of the from
	// states. A row in any other state yields ErrInvalidTransition.
	Transition(ctx context.Context, id string, from []string, fields map[string]any) (*pycDatamodel.PYC, error)
	Delete(ctx context.Context, id string, from []string) error
}

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, n *notificationDatamodel.Notification) error
}

// NameResolver turns an email into a display name.
type NameResolver interface {
	Name(email string) string
}

type Service struct {
	repo        RepositoryAPI
	notifier    Notifier
	names       NameResolver
	revalidator revalidate.Revalidator
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo RepositoryAPI, notifier Notifier, names NameResolver, revalidator revalidate.Revalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		notifier:    notifier,
		names:       names,
		revalidator: revalidator,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) List(ctx context.Context, f query.Filter, p query.Page) (query.Result[Response], error) {
	res, err := s.repo.List(ctx, f, p)
	if err != nil {
		return query.Result[Response]{}, err
	}
	out := query.Result[Response]{Data: make([]Response, len(res.Data)), Count: res.Count}
	for i := range res.Data {
		out.Data[i] = s.respond(&res.Data[i])
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Response, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.respond(p)
	return &resp, nil
}

func (s *Service) Add(ctx context.Context, author string, dto CreatePYCDTO) (*Response, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p := NewPYC(author, dto, s.now())
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Warn("PYC: create failed", "pyc_id", p.ID, "author", p.AuthorEmail, "error", err)
		return nil, err
	}

	s.logger.Info("PYC: created", "pyc_id", p.ID, "author", p.AuthorEmail)
	s.revalidator.Revalidate(ctx, Root)
	resp := s.respond(p)
	return &resp, nil
}

// Update lets the author edit a draft or rejected request.
func (s *Service) Update(ctx context.Context, caller, id string, dto UpdatePYCDTO) (*Response, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	fields, err := query.Patch(dto.Fields(), Updatable...)
	if err != nil {
		return nil, err
	}

	current, err := s.authored(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !isEditable(current.Status) {
		return nil, ErrInvalidTransition
	}

	p, err := s.repo.Transition(ctx, id, Editable, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("PYC: updated", "pyc_id", id)
	s.revalidator.Revalidate(ctx, Root, Path(id))
	resp := s.respond(p)
	return &resp, nil
}

// Delete removes a draft. Submitted requests are kept for the record.
func (s *Service) Delete(ctx context.Context, caller, id string) error {
	current, err := s.authored(ctx, caller, id)
	if err != nil {
		return err
	}
	if current.Status != pycDatamodel.StatusDraft {
		return ErrInvalidTransition
	}

	if err := s.repo.Delete(ctx, id, []string{pycDatamodel.StatusDraft}); err != nil {
		return err
	}

	s.logger.Info("PYC: deleted", "pyc_id", id)
	s.revalidator.Revalidate(ctx, Root, Path(id))
	return nil
}

// Submit sends a draft or rejected request to its approver.
func (s *Service) Submit(ctx context.Context, caller, id string) (*Response, error) {
	current, err := s.authored(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !isEditable(current.Status) {
		return nil, ErrInvalidTransition
	}
	if current.ApproverEmail == nil {
		return nil, internal.NewValidationFieldError("approver_email", "an approver is required before submitting", internal.ErrCodeValidationFailed)
	}
	if len(current.Details) == 0 {
		return nil, internal.NewValidationFieldError("details", "at least one detail line is required before submitting", internal.ErrCodeValidationFailed)
	}

	p, err := s.repo.Transition(ctx, id, Editable, map[string]any{
		"status": pycDatamodel.StatusPending,
		"note":   "",
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("PYC: submitted", "pyc_id", id, "approver", *p.ApproverEmail)
	s.notify(ctx, notification.New(*p.ApproverEmail,
		"Phiếu yêu cầu chờ duyệt",
		fmt.Sprintf("%s gửi phiếu %s: %s", s.name(p.AuthorEmail), p.ID, p.Title),
		notificationDatamodel.TypeInfo, Path(p.ID)))
	s.revalidator.Revalidate(ctx, Root, Path(id))
	resp := s.respond(p)
	return &resp, nil
}

func (s *Service) Approve(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error) {
	return s.decide(ctx, caller, id, pycDatamodel.StatusApproved, strings.TrimSpace(dto.Note))
}

// Reject requires a note so the author knows what to change.
func (s *Service) Reject(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error) {
	note := strings.TrimSpace(dto.Note)
	if note == "" {
		return nil, internal.NewValidationFieldError("note", "note is required when rejecting", internal.ErrCodeValidationFailed)
	}
	return s.decide(ctx, caller, id, pycDatamodel.StatusRejected, note)
}

func (s *Service) decide(ctx context.Context, caller, id, status, note string) (*Response, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sameEmail(caller, current.ApproverEmail) {
		s.logger.Warn("PYC: decision by non-approver", "pyc_id", id, "caller", caller)
		return nil, ErrNotApprover
	}

	p, err := s.repo.Transition(ctx, id, []string{pycDatamodel.StatusPending}, map[string]any{
		"status": status,
		"note":   note,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("PYC: decided", "pyc_id", id, "status", status, "approver", caller)

	title, kind := "Phiếu yêu cầu đã được duyệt", notificationDatamodel.TypeSuccess
	if status == pycDatamodel.StatusRejected {
		title, kind = "Phiếu yêu cầu bị từ chối", notificationDatamodel.TypeError
	}
	message := fmt.Sprintf("%s: %s", p.ID, p.Title)
	if note != "" {
		message += " (" + note + ")"
	}
	s.notify(ctx, notification.New(p.AuthorEmail, title, message, kind, Path(p.ID)))
	s.revalidator.Revalidate(ctx, Root, Path(id))
	resp := s.respond(p)
	return &resp, nil
}

func (s *Service) authored(ctx context.Context, caller, id string) (*pycDatamodel.PYC, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(caller, p.AuthorEmail) {
		s.logger.Warn("PYC: change by non-author", "pyc_id", id, "caller", caller)
		return nil, ErrNotAuthor
	}
	return p, nil
}

// notify never fails the caller: the status change is already committed.
func (s *Service) notify(ctx context.Context, n *notificationDatamodel.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("PYC: notification failed", "user_email", n.UserEmail, "error", err)
	}
}

func (s *Service) name(email string) string {
	if s.names == nil {
		return email
	}
	return s.names.Name(email)
}

func (s *Service) respond(p *pycDatamodel.PYC) Response {
	resp := Response{PYC: *p, AuthorName: s.name(p.AuthorEmail)}
	if p.ApproverEmail != nil {
		resp.ApproverName = s.name(*p.ApproverEmail)
	}
	return resp
}
