package auth

import (
	"net/http"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/frahmantamala/business-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Sessions *SessionManager
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, sessions *SessionManager) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Sessions:    sessions,
	}
}

// Login starts the OAuth flow with a PKCE verifier kept in a cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	cfg := h.Sessions.Config()
	next := SafeNext(r.URL.Query().Get("next"), cfg.DashboardPath)

	verifier, challenge, err := NewCodeVerifier()
	if err != nil {
		logger.From(r.Context()).Error("Auth: failed to create code verifier", "error", err)
		http.Redirect(w, r, cfg.ErrorPath, http.StatusFound)
		return
	}

	target, err := h.Service.AuthorizeURL(next, challenge)
	if err != nil {
		logger.From(r.Context()).Error("Auth: cannot start oauth flow", "error", err)
		http.Redirect(w, r, cfg.ErrorPath, http.StatusFound)
		return
	}

	h.Sessions.SetVerifier(w, verifier)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	cfg := h.Sessions.Config()
	q := r.URL.Query()
	verifier := h.Sessions.TakeVerifier(w, r)

	session, err := h.Service.CompleteLogin(r.Context(), q.Get("code"), verifier)
	if err != nil {
		logger.From(r.Context()).Warn("Auth: code exchange failed", "error", err)
		http.Redirect(w, r, cfg.ErrorPath, http.StatusFound)
		return
	}

	h.Sessions.WriteCookies(w, session)
	http.Redirect(w, r, SafeNext(q.Get("next"), cfg.DashboardPath), http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.SignOut(r.Context(), h.Sessions.AccessToken(r)); err != nil {
		logger.From(r.Context()).Warn("Auth: provider sign out failed", "error", err)
	}
	h.Sessions.ClearCookies(w)
	http.Redirect(w, r, h.Sessions.Config().LoginPath, http.StatusFound)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	su, ok := UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrSessionMissing)
		return
	}

	me, err := h.Service.CurrentUser(r.Context(), su)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, me)
}
