package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	errors "github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/pkg/logger"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a plain error response for failures that carry no AppError.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.WriteJSON(w, status, map[string]interface{}{
		"code":    status,
		"message": message,
	})
}

// HandleServiceError renders an AppError with its own status; anything else
// becomes a 500 without leaking the cause.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	lg := logger.From(r.Context())
	if appErr, ok := errors.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			lg.Error("request failed", "path", r.URL.Path, "error", err)
		} else {
			lg.Debug("request rejected", "path", r.URL.Path, "code", appErr.Code, "error", appErr.GetDetailedMessage())
		}
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}
	lg.Error("unexpected error", "path", r.URL.Path, "error", err)
	status, body := errors.NewInternalError("Internal server error", err).ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// DecodeJSON reads a bounded JSON body into dst, rejecting unknown fields.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.NewValidationError("Request body is required", errors.ErrCodeValidationFailed)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.NewValidationError("Request body is required", errors.ErrCodeValidationFailed)
		}
		return errors.NewValidationError(fmt.Sprintf("Invalid request body: %v", err), errors.ErrCodeValidationFailed)
	}
	return nil
}

// ListParams parses page, page_size and search from the query string, plus
// any of the allowed equality filters present. page_size=0 asks for all rows.
func (h *BaseHandler) ListParams(r *http.Request, filterable ...string) (query.Filter, query.Page, error) {
	q := r.URL.Query()
	page := query.Page{Page: 1, PageSize: query.DefaultPageSize}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return query.Filter{}, page, errors.NewValidationFieldError("page", "page must be a positive integer", errors.ErrCodeValidationFailed)
		}
		page.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > query.MaxPageSize {
			message := fmt.Sprintf("page_size must be between 0 and %d", query.MaxPageSize)
			return query.Filter{}, page, errors.NewValidationFieldError("page_size", message, errors.ErrCodeValidationFailed)
		}
		page.PageSize = n
	}

	filter := query.Filter{Search: strings.TrimSpace(q.Get("search"))}
	for _, column := range filterable {
		if v := q.Get(column); v != "" {
			if filter.Equals == nil {
				filter.Equals = map[string]any{}
			}
			filter.Equals[column] = v
		}
	}
	return filter, page, nil
}

// PathInt64 parses a numeric URL parameter already extracted by the router.
func (h *BaseHandler) PathInt64(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationFieldError(name, fmt.Sprintf("%s must be a positive integer", name), errors.ErrCodeValidationFailed)
	}
	return id, nil
}
