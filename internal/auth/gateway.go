package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/pkg/logger"
)

var DefaultPublicPaths = []string{
	"/",
	"/login",
	"/auth/*",
	"/api/v1/health",
	"/api/v1/ping",
	"/openapi.yml",
	"/swagger/*",
}

// Gateway runs in front of every route and decides pass-through or redirect.
type Gateway struct {
	sessions *SessionManager
	public   []string
	logger   *slog.Logger
}

func NewGateway(sessions *SessionManager, logger *slog.Logger) *Gateway {
	public := sessions.Config().PublicPaths
	if len(public) == 0 {
		public = DefaultPublicPaths
	}
	return &Gateway{sessions: sessions, public: public, logger: logger}
}

func (g *Gateway) IsPublic(path string) bool {
	for _, p := range g.public {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

func (g *Gateway) Middleware(next http.Handler) http.Handler {
	cfg := g.sessions.Config()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, refreshed, err := g.sessions.Resolve(r)
		path := r.URL.Path

		if err != nil {
			if err != ErrNoSession {
				g.logger.Debug("Gateway: session unusable", "path", path, "error", err)
				g.sessions.ClearCookies(w)
			}
			if g.IsPublic(path) {
				next.ServeHTTP(w, r)
				return
			}
			target := cfg.LoginPath
			if r.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		if refreshed != nil {
			g.sessions.WriteCookies(w, refreshed)
		}

		if path == cfg.LoginPath || path == "/" {
			http.Redirect(w, r, cfg.DashboardPath, http.StatusFound)
			return
		}

		// users rows are keyed by the lower-cased email
		user.Email = strings.ToLower(strings.TrimSpace(user.Email))
		ctx := ContextWithUser(r.Context(), user)
		ctx = internal.ContextWithUserEmail(ctx, user.Email)
		ctx = logger.With(ctx, "user", user.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
