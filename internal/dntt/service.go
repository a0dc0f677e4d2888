package dntt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/business-management/internal"
	dnttDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/dntt"
	notificationDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/notification"
	"github.com/frahmantamala/business-management/internal/revalidate"
)

type RepositoryAPI interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[dnttDatamodel.DNTT], error)
	GetByID(ctx context.Context, id string) (*dnttDatamodel.DNTT, error)
	Create(ctx context.Context, d *dnttDatamodel.DNTT) error
	Transition(ctx context.Context, id string, from []string, fields map[string]any) (*dnttDatamodel.DNTT, error)
	Delete(ctx context.Context, id string, from []string) error
}

type Notifier interface {
	Notify(ctx context.Context, n *notificationDatamodel.Notification) error
}

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
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.respond(d)
	return &resp, nil
}

func (s *Service) Add(ctx context.Context, requester string, dto CreateDNTTDTO) (*Response, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d := NewDNTT(requester, dto, s.now())
	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Warn("DNTT: create failed", "dntt_id", d.ID, "error", err)
		return nil, err
	}

	s.logger.Info("DNTT: created", "dntt_id", d.ID, "requester", d.RequesterEmail, "amount", d.Amount)
	s.revalidator.Revalidate(ctx, Root)
	resp := s.respond(d)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, caller, id string, dto UpdateDNTTDTO) (*Response, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	fields, err := query.Patch(dto.Fields(), Updatable...)
	if err != nil {
		return nil, err
	}
	if err := s.requested(ctx, caller, id); err != nil {
		return nil, err
	}

	d, err := s.repo.Transition(ctx, id, []string{dnttDatamodel.StatusPending}, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("DNTT: updated", "dntt_id", id)
	s.revalidator.Revalidate(ctx, Root, Path(id))
	resp := s.respond(d)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, caller, id string) error {
	if err := s.requested(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, []string{dnttDatamodel.StatusPending}); err != nil {
		return err
	}

	s.logger.Info("DNTT: deleted", "dntt_id", id)
	s.revalidator.Revalidate(ctx, Root, Path(id))
	return nil
}

func (s *Service) Approve(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error) {
	return s.move(ctx, caller, id, dnttDatamodel.StatusPending, dnttDatamodel.StatusApproved, strings.TrimSpace(dto.Note))
}

func (s *Service) Reject(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error) {
	note := strings.TrimSpace(dto.Note)
	if note == "" {
		return nil, internal.NewValidationFieldError("note", "note is required when rejecting", internal.ErrCodeValidationFailed)
	}
	return s.move(ctx, caller, id, dnttDatamodel.StatusPending, dnttDatamodel.StatusRejected, note)
}

// MarkPaid closes an approved request once the transfer is made.
func (s *Service) MarkPaid(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error) {
	return s.move(ctx, caller, id, dnttDatamodel.StatusApproved, dnttDatamodel.StatusPaid, strings.TrimSpace(dto.Note))
}

func (s *Service) move(ctx context.Context, caller, id, from, to, note string) (*Response, error) {
	fields := map[string]any{"status": to}
	if note != "" {
		fields["note"] = note
	}
	d, err := s.repo.Transition(ctx, id, []string{from}, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("DNTT: status changed", "dntt_id", id, "from", from, "to", to, "by", caller)
	s.notify(ctx, d, to, note)
	s.revalidator.Revalidate(ctx, Root, Path(id))
	resp := s.respond(d)
	return &resp, nil
}

func (s *Service) notify(ctx context.Context, d *dnttDatamodel.DNTT, status, note string) {
	var title, kind string
	switch status {
	case dnttDatamodel.StatusApproved:
		title, kind = "Đề nghị thanh toán đã được duyệt", notificationDatamodel.TypeSuccess
	case dnttDatamodel.StatusRejected:
		title, kind = "Đề nghị thanh toán bị từ chối", notificationDatamodel.TypeError
	case dnttDatamodel.StatusPaid:
		title, kind = "Đề nghị thanh toán đã được chi", notificationDatamodel.TypeSuccess
	default:
		return
	}
	message := fmt.Sprintf("%s: %s (%d VND)", d.ID, d.Title, d.Amount)
	if note != "" {
		message += " - " + note
	}

	n := notification.New(d.RequesterEmail, title, message, kind, Path(d.ID))
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("DNTT: notification failed", "user_email", n.UserEmail, "error", err)
	}
}

func (s *Service) requested(ctx context.Context, caller, id string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !strings.EqualFold(caller, d.RequesterEmail) {
		return ErrNotRequester
	}
	if d.Status != dnttDatamodel.StatusPending {
		return ErrInvalidTransition
	}
	return nil
}

func (s *Service) respond(d *dnttDatamodel.DNTT) Response {
	resp := Response{DNTT: *d, RequesterName: d.RequesterEmail}
	if s.names != nil {
		resp.RequesterName = s.names.Name(d.RequesterEmail)
	}
	return resp
}
