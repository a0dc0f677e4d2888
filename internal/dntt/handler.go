package dntt

import (
	"context"
	"net/http"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/auth"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[Response], error)
	Get(ctx context.Context, id string) (*Response, error)
	Add(ctx context.Context, requester string, dto CreateDNTTDTO) (*Response, error)
	Update(ctx context.Context, caller, id string, dto UpdateDNTTDTO) (*Response, error)
	Delete(ctx context.Context, caller, id string) error
	Approve(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error)
	Reject(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error)
	MarkPaid(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f, p, err := h.ListParams(r, Filterable...)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if r.URL.Query().Get("mine") == "true" {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			h.HandleServiceError(w, r, internal.ErrSessionMissing)
			return
		}
		if f.Equals == nil {
			f.Equals = map[string]any{}
		}
		f.Equals["requester_email"] = user.Email
	}

	res, err := h.Service.List(r.Context(), f, p)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}
	var dto CreateDNTTDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	d, err := h.Service.Add(r.Context(), user.Email, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}
	var dto UpdateDNTTDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	d, err := h.Service.Update(r.Context(), user.Email, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}

	if err := h.Service.Delete(r.Context(), user.Email, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.Service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.Service.Reject)
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.Service.MarkPaid)
}

type transition func(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error)

func (h *Handler) move(w http.ResponseWriter, r *http.Request, fn transition) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}
	var dto DecisionDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
	}

	d, err := fn(r.Context(), user.Email, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}
