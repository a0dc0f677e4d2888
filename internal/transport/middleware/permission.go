package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/auth"
	"github.com/frahmantamala/business-management/pkg/logger"
)

type AccessLevelLookup interface {
	AccessLevel(ctx context.Context, email string) (int, error)
}

type accessLevelKey struct{}

// AccessLevelFromContext returns the level loaded by RequireAccessLevel.
func AccessLevelFromContext(ctx context.Context) (int, bool) {
	level, ok := ctx.Value(accessLevelKey{}).(int)
	return level, ok
}

// RequireAccessLevel admits users whose access level is at most maxLevel
// (1 is Admin, 4 is Staff).
func RequireAccessLevel(lookup AccessLevelLookup, maxLevel int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrSessionMissing)
				return
			}

			level, err := lookup.AccessLevel(r.Context(), strings.ToLower(user.Email))
			if err != nil {
				logger.From(r.Context()).Warn("Access denied: cannot load access level", "error", err)
				writeAppError(w, internal.ErrAccessLevelTooLow)
				return
			}

			if level > maxLevel {
				logger.From(r.Context()).Warn("Access denied: access level too low",
					"access_level", level,
					"required", maxLevel)
				writeAppError(w, internal.ErrAccessLevelTooLow)
				return
			}

			ctx := context.WithValue(r.Context(), accessLevelKey{}, level)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
