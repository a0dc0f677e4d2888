package notification

import (
	"context"
	"log/slog"
	"strings"

	notificationDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/revalidate"
)

type RepositoryAPI interface {
	Create(ctx context.Context, n *notificationDatamodel.Notification) error
	ListForUser(ctx context.Context, email string, unreadOnly bool, p query.Page) (query.Result[notificationDatamodel.Notification], error)
	Get(ctx context.Context, email string, id int64) (*notificationDatamodel.Notification, error)
	UnreadCount(ctx context.Context, email string) (int64, error)
	MarkRead(ctx context.Context, email string, id int64) error
	MarkAllRead(ctx context.Context, email string) (int64, error)
	Delete(ctx context.Context, email string, id int64) error
}

type Service struct {
	repo        RepositoryAPI
	revalidator revalidate.Revalidator
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, revalidator revalidate.Revalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		revalidator: revalidator,
		logger:      logger,
	}
}

// Notify stores n for its recipient. Other services call it after their own
// write has succeeded.
func (s *Service) Notify(ctx context.Context, n *notificationDatamodel.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Notification: failed to store", "user_email", n.UserEmail, "title", n.Title, "error", err)
		return err
	}
	s.logger.Debug("Notification: stored", "id", n.ID, "user_email", n.UserEmail, "type", n.Type)
	s.revalidator.Revalidate(ctx, Root)
	return nil
}

func (s *Service) Create(ctx context.Context, dto CreateNotificationDTO) (*notificationDatamodel.Notification, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	n := New(dto.UserEmail, strings.TrimSpace(dto.Title), dto.Message, dto.Type, dto.Link)
	if err := s.Notify(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) ListForUser(ctx context.Context, email string, unreadOnly bool, p query.Page) (query.Result[notificationDatamodel.Notification], error) {
	return s.repo.ListForUser(ctx, normalize(email), unreadOnly, p)
}

func (s *Service) Get(ctx context.Context, email string, id int64) (*notificationDatamodel.Notification, error) {
	return s.repo.Get(ctx, normalize(email), id)
}

func (s *Service) UnreadCount(ctx context.Context, email string) (int64, error) {
	return s.repo.UnreadCount(ctx, normalize(email))
}

func (s *Service) MarkRead(ctx context.Context, email string, id int64) error {
	if err := s.repo.MarkRead(ctx, normalize(email), id); err != nil {
		return err
	}
	s.revalidator.Revalidate(ctx, Root)
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, email string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, normalize(email))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.revalidator.Revalidate(ctx, Root)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, email string, id int64) error {
	if err := s.repo.Delete(ctx, normalize(email), id); err != nil {
		return err
	}
	s.revalidator.Revalidate(ctx, Root)
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
