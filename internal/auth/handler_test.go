package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/auth"
	authPostgres "github.com/frahmantamala/business-management/internal/auth/postgres"
	"github.com/frahmantamala/business-management/internal/authprovider"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"github.com/frahmantamala/business-management/internal/core/testdb"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/frahmantamala/business-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Auth Handler Integration", func() {
	var (
		db       *gorm.DB
		provider *fakeProvider
		service  *auth.Service
		handler  *auth.Handler
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		provider = newFakeProvider()
		provider.sessions["good-code"] = &authprovider.Session{
			AccessToken:  signToken(testSecret, "u1", "An@Corp.vn", time.Now().Add(time.Hour)),
			RefreshToken: "rt",
			ExpiresIn:    3600,
			User: authprovider.User{
				ID:    "u1",
				Email: "An@Corp.vn",
				UserMetadata: map[string]interface{}{
					"name":       "An",
					"avatar_url": "https://cdn.example.com/an.png",
				},
			},
		}

		lg := logger.LoggerWrapper()
		sessions := auth.NewSessionManager(testSessionConfig(), testSecret, provider, lg)
		service = auth.NewService(authPostgres.NewAuthRepository(db), provider, "http://app.local", "google", lg)
		handler = auth.NewHandler(transport.NewBaseHandler(lg), service, sessions)
	})

	callback := func(query string, withVerifier bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/callback?"+query, nil)
		if withVerifier {
			req.AddCookie(&http.Cookie{Name: "sb-code-verifier", Value: "verifier"})
		}
		rec := httptest.NewRecorder()
		handler.Callback(rec, req)
		return rec
	}

	countUsers := func(email string) int64 {
		var n int64
		Expect(db.Model(&userDatamodel.User{}).Where("email = ?", email).Count(&n).Error).To(Succeed())
		return n
	}

	Describe("Login", func() {
		It("redirects to the provider and stores the verifier", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/login?next=/dashboard/pyc", nil)
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(HavePrefix("https://auth.example.com/auth/v1/authorize?provider=google"))
			Expect(rec.Header().Get("Set-Cookie")).To(HavePrefix("sb-code-verifier="))
		})
	})

	Describe("Callback", func() {
		It("provisions exactly one staff user for a new email", func() {
			rec := callback("code=good-code&next=/dashboard/projects", true)

			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(Equal("/dashboard/projects"))
			Expect(strings.Join(rec.Header().Values("Set-Cookie"), "\n")).To(ContainSubstring("sb-access-token="))
			Expect(countUsers("an@corp.vn")).To(Equal(int64(1)))

			var u userDatamodel.User
			Expect(db.First(&u, "email = ?", "an@corp.vn").Error).To(Succeed())
			Expect(u.AccessLevel).To(Equal(userDatamodel.AccessStaff))
			Expect(u.FullName).To(Equal("An"))
			Expect(u.AvatarURL).To(Equal("https://cdn.example.com/an.png"))
			Expect(u.WorkStatus).To(Equal(userDatamodel.WorkStatusActive))
		})

		It("never duplicates or overwrites an existing user", func() {
			Expect(db.Create(&userDatamodel.User{
				Email:       "an@corp.vn",
				FullName:    "Nguyen Van An",
				AccessLevel: userDatamodel.AccessAdmin,
				WorkStatus:  userDatamodel.WorkStatusActive,
			}).Error).To(Succeed())

			callback("code=good-code", true)
			callback("code=good-code", true)

			Expect(countUsers("an@corp.vn")).To(Equal(int64(1)))
			var u userDatamodel.User
			Expect(db.First(&u, "email = ?", "an@corp.vn").Error).To(Succeed())
			Expect(u.AccessLevel).To(Equal(userDatamodel.AccessAdmin))
			Expect(u.FullName).To(Equal("Nguyen Van An"))
		})

		It("creates one row under concurrent logins", func() {
			var wg sync.WaitGroup
			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := service.CompleteLogin(context.Background(), "good-code", "verifier")
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()
			Expect(countUsers("an@corp.vn")).To(Equal(int64(1)))
		})

		It("defaults to the dashboard", func() {
			rec := callback("code=good-code", true)
			Expect(rec.Header().Get("Location")).To(Equal("/dashboard"))
		})

		It("ignores off-site next targets", func() {
			for _, next := range []string{"https://evil.example.com", "//evil.example.com", "%2F%5Cevil.example.com", "dashboard"} {
				rec := callback("code=good-code&next="+next, true)
				Expect(rec.Header().Get("Location")).To(Equal("/dashboard"), next)
			}
		})

		It("sends a missing code to the error page", func() {
			rec := callback("next=/dashboard", true)
			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(Equal("/auth/auth-code-error"))
			Expect(countUsers("an@corp.vn")).To(BeZero())
		})

		It("sends a rejected code to the error page", func() {
			rec := callback("code=expired", true)
			Expect(rec.Header().Get("Location")).To(Equal("/auth/auth-code-error"))
		})

		It("requires the verifier cookie", func() {
			rec := callback("code=good-code", false)
			Expect(rec.Header().Get("Location")).To(Equal("/auth/auth-code-error"))
		})

		It("still logs in when provisioning fails", func() {
			Expect(db.Exec("DROP TABLE users").Error).To(Succeed())

			rec := callback("code=good-code&next=/dashboard/pyc", true)
			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(Equal("/dashboard/pyc"))
		})
	})

	Describe("Logout", func() {
		It("signs out, clears cookies and returns to login", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			req.AddCookie(&http.Cookie{Name: internal.DefaultAccessCookie, Value: "at"})
			rec := httptest.NewRecorder()
			handler.Logout(rec, req)

			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(Equal("/login"))
			Expect(provider.signOuts).To(Equal([]string{"at"}))
			Expect(strings.Join(rec.Header().Values("Set-Cookie"), "\n")).To(ContainSubstring("Max-Age=0"))
		})
	})

	Describe("Me", func() {
		It("returns the personnel row of the session user", func() {
			callback("code=good-code", true)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			req = req.WithContext(auth.ContextWithUser(req.Context(), &auth.SessionUser{ID: "u1", Email: "an@corp.vn"}))
			rec := httptest.NewRecorder()
			handler.Me(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var me struct {
				ID   string             `json:"id"`
				User userDatamodel.User `json:"user"`
			}
			Expect(json.NewDecoder(rec.Body).Decode(&me)).To(Succeed())
			Expect(me.ID).To(Equal("u1"))
			Expect(me.User.AccessLevel).To(Equal(4))
		})

		It("rejects requests without a session", func() {
			rec := httptest.NewRecorder()
			handler.Me(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})

var _ = Describe("SafeNext", func() {
	It("keeps relative paths with queries", func() {
		Expect(auth.SafeNext("/dashboard/pyc?status=pending", "/dashboard")).To(Equal("/dashboard/pyc?status=pending"))
		Expect(auth.SafeNext("", "/dashboard")).To(Equal("/dashboard"))
	})
})

var _ = Describe("PKCE", func() {
	It("derives the S256 challenge from the verifier", func() {
		verifier, challenge, err := auth.NewCodeVerifier()
		Expect(err).NotTo(HaveOccurred())
		Expect(verifier).To(HaveLen(43))
		Expect(challenge).To(Equal(auth.CodeChallenge(verifier)))
		// RFC 7636 appendix B
		Expect(auth.CodeChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")).To(Equal("E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"))
	})
})
