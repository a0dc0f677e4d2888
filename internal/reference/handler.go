package reference

import (
	"context"
	"net/http"

	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Tables() []Table
	List(ctx context.Context, table string, f query.Filter, p query.Page) (query.Result[any], error)
	Get(ctx context.Context, table string, id int64) (any, error)
	Add(ctx context.Context, table string, body map[string]any) (any, error)
	Update(ctx context.Context, table string, id int64, body map[string]any) (any, error)
	Delete(ctx context.Context, table string, id int64) error
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

// Tables returns the column configuration the UI renders forms from.
func (h *Handler) Tables(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]any{"data": h.Service.Tables()})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	t, err := Lookup(table)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	f, p, err := h.ListParams(r, t.Filterable...)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.List(r.Context(), table, f, p)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	row, err := h.Service.Get(r.Context(), chi.URLParam(r, "table"), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, row)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := h.DecodeJSON(r, &body); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	row, err := h.Service.Add(r.Context(), chi.URLParam(r, "table"), body)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, row)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	var body map[string]any
	if err := h.DecodeJSON(r, &body); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	row, err := h.Service.Update(r.Context(), chi.URLParam(r, "table"), id, body)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, row)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "table"), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
