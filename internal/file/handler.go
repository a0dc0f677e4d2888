package file

import (
	"context"
	"net/http"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/auth"
	fileDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/file"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[fileDatamodel.File], error)
	ListByOwner(ctx context.Context, owner Owner) ([]fileDatamodel.File, error)
	Get(ctx context.Context, id int64) (*fileDatamodel.File, error)
	Add(ctx context.Context, uploader string, dto CreateFileDTO) (*fileDatamodel.File, error)
	Update(ctx context.Context, id int64, dto UpdateFileDTO) (*fileDatamodel.File, error)
	Delete(ctx context.Context, id int64) error
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

// List serves GET /files. With both table_name and ref_id it returns every
// file of that owner; otherwise it is a regular paged list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("table_name") != "" && q.Get("ref_id") != "" && q.Get("page") == "" {
		owner, err := ParseOwner(q.Get("table_name"), q.Get("ref_id"))
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		files, err := h.Service.ListByOwner(r.Context(), owner)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, query.Result[fileDatamodel.File]{Data: files, Count: int64(len(files))})
		return
	}

	f, p, err := h.ListParams(r, Filterable...)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	res, err := h.Service.List(r.Context(), f, p)
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

	f, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}
	var dto CreateFileDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	f, err := h.Service.Add(r.Context(), user.Email, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, f)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	var dto UpdateFileDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	f, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
