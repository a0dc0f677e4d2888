package project

import (
	"context"
	"net/http"

	projectDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[projectDatamodel.Project], error)
	Get(ctx context.Context, id string) (*projectDatamodel.Project, error)
	Add(ctx context.Context, dto CreateProjectDTO) (*projectDatamodel.Project, error)
	Update(ctx context.Context, id string, dto UpdateProjectDTO) (*projectDatamodel.Project, error)
	Delete(ctx context.Context, id string) error

	ListItems(ctx context.Context, projectID string, f query.Filter, p query.Page) (query.Result[projectDatamodel.Item], error)
	GetItem(ctx context.Context, projectID string, id int64) (*projectDatamodel.Item, error)
	AddItem(ctx context.Context, projectID string, dto CreateItemDTO) (*projectDatamodel.Item, error)
	AddItems(ctx context.Context, projectID string, dto BulkItemsDTO) ([]*projectDatamodel.Item, error)
	UpdateItem(ctx context.Context, projectID string, id int64, dto UpdateItemDTO) (*projectDatamodel.Item, error)
	DeleteItem(ctx context.Context, projectID string, id int64) error

	ListPersonnel(ctx context.Context, projectID string, p query.Page) (query.Result[userDatamodel.User], error)
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
	var dto CreateProjectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	p, err := h.Service.Add(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateProjectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	p, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	f, p, err := h.ListParams(r, ItemFilterable...)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.ListItems(r.Context(), chi.URLParam(r, "id"), f, p)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(chi.URLParam(r, "itemID"), "item_id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	item, err := h.Service.GetItem(r.Context(), chi.URLParam(r, "id"), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var dto CreateItemDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	item, err := h.Service.AddItem(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) CreateItems(w http.ResponseWriter, r *http.Request) {
	var dto BulkItemsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	items, err := h.Service.AddItems(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"data":  items,
		"count": len(items),
	})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(chi.URLParam(r, "itemID"), "item_id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateItemDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	item, err := h.Service.UpdateItem(r.Context(), chi.URLParam(r, "id"), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(chi.URLParam(r, "itemID"), "item_id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.DeleteItem(r.Context(), chi.URLParam(r, "id"), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPersonnel(w http.ResponseWriter, r *http.Request) {
	_, p, err := h.ListParams(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.ListPersonnel(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}
