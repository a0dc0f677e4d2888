package notification

import (
	"context"
	"net/http"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/auth"
	notificationDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateNotificationDTO) (*notificationDatamodel.Notification, error)
	ListForUser(ctx context.Context, email string, unreadOnly bool, p query.Page) (query.Result[notificationDatamodel.Notification], error)
	Get(ctx context.Context, email string, id int64) (*notificationDatamodel.Notification, error)
	UnreadCount(ctx context.Context, email string) (int64, error)
	MarkRead(ctx context.Context, email string, id int64) error
	MarkAllRead(ctx context.Context, email string) (int64, error)
	Delete(ctx context.Context, email string, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// List returns the caller's notifications, newest first; ?unread=true keeps
// only unread ones.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}
	_, p, err := h.ListParams(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.ListForUser(r.Context(), user.Email, r.URL.Query().Get("unread") == "true", p)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

// Get returns one of the caller's notifications; anyone else's is a 404.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}
	id, err := h.PathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	n, err := h.Service.Get(r.Context(), user.Email, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}

	n, err := h.Service.UnreadCount(r.Context(), user.Email)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UnreadCountResponse{Unread: n})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateNotificationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	n, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}
	id, err := h.PathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.MarkRead(r.Context(), user.Email, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}

	n, err := h.Service.MarkAllRead(r.Context(), user.Email)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MarkAllReadResponse{Updated: n})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}
	id, err := h.PathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), user.Email, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
