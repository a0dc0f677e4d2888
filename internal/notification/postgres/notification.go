package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/frahmantamala/business-management/internal"
	notificationDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/notification"
	"github.com/jmoiron/sqlx"
)

const columns = `id, user_email, title, message, type, is_read, link, created_at`

// NotificationRepository talks to the notifications table through sqlx.
type NotificationRepository struct {
	db        *sqlx.DB
	batchSize int
}

func NewNotificationRepository(db *sqlx.DB, batchSize int) *NotificationRepository {
	if batchSize <= 0 {
		batchSize = query.DefaultBatchSize
	}
	return &NotificationRepository{db: db, batchSize: batchSize}
}

var _ notification.RepositoryAPI = (*NotificationRepository)(nil)

func (r *NotificationRepository) Create(ctx context.Context, n *notificationDatamodel.Notification) error {
	q := `INSERT INTO notifications (user_email, title, message, type, is_read, link)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, q, n.UserEmail, n.Title, n.Message, n.Type, n.IsRead, n.Link)
	if err := row.Scan(&n.ID, &n.CreatedAt); err != nil {
		return internal.NewInternalError("failed to create notification", err)
	}
	return nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, email string, unreadOnly bool, p query.Page) (query.Result[notificationDatamodel.Notification], error) {
	res := query.Result[notificationDatamodel.Notification]{Data: []notificationDatamodel.Notification{}}
	if p.PageSize < 0 {
		return res, internal.NewValidationError("page_size must not be negative", internal.ErrCodeValidationFailed)
	}

	where := `WHERE user_email = $1`
	if unreadOnly {
		where += ` AND is_read = false`
	}

	if err := r.db.GetContext(ctx, &res.Count, `SELECT COUNT(*) FROM notifications `+where, email); err != nil {
		return res, internal.NewInternalError("failed to count notifications", err)
	}
	if res.Count == 0 {
		return res, nil
	}

	list := `SELECT ` + columns + ` FROM notifications ` + where + ` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`

	if p.PageSize != query.AllRows {
		if int64(p.Offset()) >= res.Count {
			return res, nil
		}
		if err := r.db.SelectContext(ctx, &res.Data, list, email, p.PageSize, p.Offset()); err != nil {
			return res, internal.NewInternalError("failed to list notifications", err)
		}
		return res, nil
	}

	for offset := 0; ; offset += r.batchSize {
		var batch []notificationDatamodel.Notification
		if err := r.db.SelectContext(ctx, &batch, list, email, r.batchSize, offset); err != nil {
			return res, internal.NewInternalError(fmt.Sprintf("failed to list notifications at offset %d", offset), err)
		}
		res.Data = append(res.Data, batch...)
		if len(batch) < r.batchSize {
			break
		}
	}
	return res, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, email string) (int64, error) {
	var n int64
	q := `SELECT COUNT(*) FROM notifications WHERE user_email = $1 AND is_read = false`
	if err := r.db.GetContext(ctx, &n, q, email); err != nil {
		return 0, internal.NewInternalError("failed to count unread notifications", err)
	}
	return n, nil
}

// MarkRead only touches notifications addressed to email.
func (r *NotificationRepository) MarkRead(ctx context.Context, email string, id int64) error {
	q := `UPDATE notifications SET is_read = true WHERE id = $1 AND user_email = $2`
	res, err := r.db.ExecContext(ctx, q, id, email)
	if err != nil {
		return internal.NewInternalError("failed to mark notification read", err)
	}
	return requireRow(res)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, email string) (int64, error) {
	q := `UPDATE notifications SET is_read = true WHERE user_email = $1 AND is_read = false`
	res, err := r.db.ExecContext(ctx, q, email)
	if err != nil {
		return 0, internal.NewInternalError("failed to mark notifications read", err)
	}
	return res.RowsAffected()
}

func (r *NotificationRepository) Delete(ctx context.Context, email string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_email = $2`, id, email)
	if err != nil {
		return internal.NewInternalError("failed to delete notification", err)
	}
	return requireRow(res)
}

// Get reads one of email's notifications. Other recipients' rows are not found.
func (r *NotificationRepository) Get(ctx context.Context, email string, id int64) (*notificationDatamodel.Notification, error) {
	var n notificationDatamodel.Notification
	err := r.db.GetContext(ctx, &n, `SELECT `+columns+` FROM notifications WHERE id = $1 AND user_email = $2`, id, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notification.ErrNotificationNotFound
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to get notification", err)
	}
	return &n, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return internal.NewInternalError("failed to read affected rows", err)
	}
	if n == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}
