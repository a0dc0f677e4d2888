package user

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/business-management/internal"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, f query.Filter, p query.Page) (query.Result[userDatamodel.User], error)
	Get(ctx context.Context, email string) (*userDatamodel.User, error)
	Add(ctx context.Context, dto CreateUserDTO) (*userDatamodel.User, error)
	Update(ctx context.Context, email string, dto UpdateUserDTO) (*userDatamodel.User, error)
	Delete(ctx context.Context, email string) error
	AssignProject(ctx context.Context, email string, dto AssignProjectDTO) (*userDatamodel.User, error)
	RemoveProject(ctx context.Context, email, projectID string) (*userDatamodel.User, error)
	Export(ctx context.Context, f query.Filter) ([]byte, error)
}

// OptionsSource serves the cached personnel list.
type OptionsSource interface {
	Get(ctx context.Context, forceRefresh bool) ([]*userDatamodel.User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Options OptionsSource
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, options OptionsSource) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Options:     options,
	}
}

func (h *Handler) filter(r *http.Request) (query.Filter, query.Page, error) {
	f, p, err := h.ListParams(r, Filterable...)
	if err != nil {
		return f, p, err
	}
	if v, ok := f.Equals["access_level"]; ok {
		level, convErr := strconv.Atoi(v.(string))
		if convErr != nil {
			return f, p, internal.NewValidationFieldError("access_level", "access_level must be an integer", internal.ErrCodeValidationFailed)
		}
		f.Equals["access_level"] = level
	}
	if projectID := r.URL.Query().Get("project_id"); projectID != "" {
		f.Contains = map[string]string{"project_ids": projectID}
	}
	return f, p, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f, p, err := h.filter(r)
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
	u, err := h.Service.Get(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Add(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Update(r.Context(), chi.URLParam(r, "email"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "email")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AssignProject(w http.ResponseWriter, r *http.Request) {
	var dto AssignProjectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.AssignProject(r.Context(), chi.URLParam(r, "email"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) RemoveProject(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.RemoveProject(r.Context(), chi.URLParam(r, "email"), chi.URLParam(r, "projectID"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// ListOptions serves the dropdown list from the personnel cache;
// ?refresh=true bypasses freshness.
func (h *Handler) ListOptions(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "true"
	users, err := h.Options.Get(r.Context(), force)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToOptions(users))
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	f, _, err := h.filter(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	data, err := h.Service.Export(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	filename := "nhan-su-" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("Export: failed to write workbook", "error", err)
	}
}
