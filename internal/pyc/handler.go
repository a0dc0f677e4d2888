package pyc

import (
	"context"
	"net/http"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/auth"
	pycDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/pyc"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[Response], error)
	Get(ctx context.Context, id string) (*Response, error)
	Add(ctx context.Context, author string, dto CreatePYCDTO) (*Response, error)
	Update(ctx context.Context, caller, id string, dto UpdatePYCDTO) (*Response, error)
	Delete(ctx context.Context, caller, id string) error
	Submit(ctx context.Context, caller, id string) (*Response, error)
	Approve(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error)
	Reject(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error)
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

// List accepts ?mine=true to restrict to the caller's own requests and
// ?to_approve=true for the ones waiting on the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f, p, err := h.ListParams(r, Filterable...)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	if q.Get("mine") == "true" || q.Get("to_approve") == "true" {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			h.HandleServiceError(w, r, internal.ErrSessionMissing)
			return
		}
		if f.Equals == nil {
			f.Equals = map[string]any{}
		}
		if q.Get("mine") == "true" {
			f.Equals["author_email"] = user.Email
		}
		if q.Get("to_approve") == "true" {
			f.Equals["approver_email"] = user.Email
			f.Equals["status"] = pycDatamodel.StatusPending
		}
	}

	res, err := h.Service.List(r.Context(), f, p)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}
	var dto CreatePYCDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	p, err := h.Service.Add(r.Context(), user.Email, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}
	var dto UpdatePYCDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	p, err := h.Service.Update(r.Context(), user.Email, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
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

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}

	p, err := h.Service.Submit(r.Context(), user.Email, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

type decision func(ctx context.Context, caller, id string, dto DecisionDTO) (*Response, error)

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn decision) {
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

	p, err := fn(r.Context(), user.Email, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}
