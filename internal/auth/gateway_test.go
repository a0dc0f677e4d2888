package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/auth"
	"github.com/frahmantamala/business-management/internal/authprovider"
	"github.com/frahmantamala/business-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Gateway", func() {
	var (
		provider *fakeProvider
		sessions *auth.SessionManager
		handler  http.Handler
		reached  *auth.SessionUser
		hits     int
	)

	BeforeEach(func() {
		provider = newFakeProvider()
		sessions = auth.NewSessionManager(testSessionConfig(), testSecret, provider, logger.LoggerWrapper())
		gateway := auth.NewGateway(sessions, logger.LoggerWrapper())
		reached = nil
		hits = 0
		handler = gateway.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			reached, _ = auth.UserFromContext(r.Context())
			Expect(internal.UserEmailFromContext(r.Context())).To(Equal(emailOf(reached)))
			w.WriteHeader(http.StatusOK)
		}))
	})

	serve := func(method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	access := func(token string) *http.Cookie {
		return &http.Cookie{Name: internal.DefaultAccessCookie, Value: token}
	}
	refresh := func(token string) *http.Cookie {
		return &http.Cookie{Name: internal.DefaultRefreshCookie, Value: token}
	}

	Context("without a session", func() {
		It("redirects every protected path to the login page", func() {
			for _, path := range []string{"/dashboard", "/dashboard/projects", "/api/v1/personnel", "/api/v1/pyc/abc", "/personnel"} {
				rec := serve(http.MethodGet, path)
				Expect(rec.Code).To(Equal(http.StatusFound), path)
				Expect(rec.Header().Get("Location")).To(HavePrefix("/login"), path)
			}
			Expect(hits).To(BeZero())
		})

		It("remembers the requested path", func() {
			rec := serve(http.MethodGet, "/dashboard/projects?tab=items")
			Expect(rec.Header().Get("Location")).To(Equal("/login?next=%2Fdashboard%2Fprojects%3Ftab%3Ditems"))
		})

		It("redirects mutations without a next parameter", func() {
			rec := serve(http.MethodPost, "/api/v1/projects")
			Expect(rec.Header().Get("Location")).To(Equal("/login"))
		})

		It("lets public paths through", func() {
			for _, path := range []string{"/", "/login", "/auth/callback", "/auth/auth-code-error", "/api/v1/health", "/swagger/index.html"} {
				rec := serve(http.MethodGet, path)
				Expect(rec.Code).To(Equal(http.StatusOK), path)
			}
			Expect(reached).To(BeNil())
		})

		It("treats a forged token as no session", func() {
			token := signToken("another-secret-another-secret-another", "u1", "an@corp.vn", time.Now().Add(time.Hour))
			rec := serve(http.MethodGet, "/dashboard", access(token))
			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(hits).To(BeZero())
		})
	})

	Context("with a valid session", func() {
		var token string

		BeforeEach(func() {
			token = signToken(testSecret, "u1", "an@corp.vn", time.Now().Add(time.Hour))
		})

		It("sends the login page to the dashboard", func() {
			rec := serve(http.MethodGet, "/login", access(token))
			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(Equal("/dashboard"))
		})

		It("sends the home page to the dashboard", func() {
			rec := serve(http.MethodGet, "/", access(token))
			Expect(rec.Header().Get("Location")).To(Equal("/dashboard"))
		})

		It("passes protected paths through with the user in context", func() {
			rec := serve(http.MethodGet, "/api/v1/projects", access(token))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(reached).To(Equal(&auth.SessionUser{ID: "u1", Email: "an@corp.vn"}))
			Expect(provider.refreshCalls).To(BeZero())
		})

		It("lower-cases the session email", func() {
			mixed := signToken(testSecret, "u2", " An.Nguyen@Corp.VN", time.Now().Add(time.Hour))
			rec := serve(http.MethodGet, "/api/v1/projects", access(mixed))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(reached.Email).To(Equal("an.nguyen@corp.vn"))
		})
	})

	Context("with an expired access token", func() {
		var expired string

		BeforeEach(func() {
			expired = signToken(testSecret, "u1", "an@corp.vn", time.Now().Add(-time.Minute))
		})

		It("refreshes the session and rewrites both cookies", func() {
			provider.refreshed = &authprovider.Session{
				AccessToken:  signToken(testSecret, "u1", "an@corp.vn", time.Now().Add(time.Hour)),
				RefreshToken: "rt-2",
				ExpiresIn:    3600,
				User:         authprovider.User{ID: "u1", Email: "an@corp.vn"},
			}

			rec := serve(http.MethodGet, "/dashboard", access(expired), refresh("rt-1"))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(provider.refreshCalls).To(Equal(1))

			setCookies := strings.Join(rec.Header().Values("Set-Cookie"), "\n")
			Expect(setCookies).To(ContainSubstring(internal.DefaultAccessCookie + "="))
			Expect(setCookies).To(ContainSubstring(internal.DefaultRefreshCookie + "=rt-2"))
			Expect(setCookies).To(ContainSubstring("HttpOnly"))
		})

		It("redirects and clears cookies when the refresh fails", func() {
			provider.refreshErr = errors.New("refresh token revoked")

			rec := serve(http.MethodGet, "/dashboard", access(expired), refresh("rt-1"))
			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(HavePrefix("/login"))
			Expect(strings.Join(rec.Header().Values("Set-Cookie"), "\n")).To(ContainSubstring("Max-Age=0"))
			Expect(hits).To(BeZero())
		})

		It("does not try to refresh without a refresh cookie", func() {
			rec := serve(http.MethodGet, "/dashboard", access(expired))
			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(provider.refreshCalls).To(BeZero())
		})
	})

	Describe("IsPublic", func() {
		It("matches wildcard prefixes only on segment boundaries", func() {
			gateway := auth.NewGateway(sessions, logger.LoggerWrapper())
			Expect(gateway.IsPublic("/auth")).To(BeTrue())
			Expect(gateway.IsPublic("/auth/login")).To(BeTrue())
			Expect(gateway.IsPublic("/authority")).To(BeFalse())
			Expect(gateway.IsPublic("/dashboard")).To(BeFalse())
		})
	})
})

func emailOf(u *auth.SessionUser) string {
	if u == nil {
		return ""
	}
	return u.Email
}
