package web_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/business-management/internal/auth"
	"github.com/frahmantamala/business-management/internal/web"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type names map[string]string

func (n names) Name(email string) string {
	if name, ok := n[email]; ok {
		return name
	}
	return email
}

var _ = Describe("Pages", func() {
	var pages *web.Pages

	BeforeEach(func() {
		var err error
		pages, err = web.NewPages(names{"an@corp.vn": "Nguyễn Văn An"})
		Expect(err).NotTo(HaveOccurred())
	})

	It("renders the login page with a sanitised next", func() {
		rec := httptest.NewRecorder()
		pages.Login(rec, httptest.NewRequest(http.MethodGet, "/login?next=https://evil.example", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/html"))
		Expect(rec.Body.String()).To(ContainSubstring("/auth/login?next="))
		Expect(rec.Body.String()).To(ContainSubstring("dashboard"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("evil.example"))
	})

	It("greets the signed-in user by display name", func() {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req = req.WithContext(auth.ContextWithUser(req.Context(), &auth.SessionUser{ID: "u1", Email: "an@corp.vn"}))
		rec := httptest.NewRecorder()
		pages.Dashboard(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Nguyễn Văn An"))
		Expect(rec.Body.String()).To(ContainSubstring("/api/v1/pyc"))
	})

	It("sends anonymous dashboard requests to login", func() {
		rec := httptest.NewRecorder()
		pages.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		Expect(rec.Code).To(Equal(http.StatusFound))
		Expect(rec.Header().Get("Location")).To(Equal("/login"))
	})

	It("renders the auth error page", func() {
		rec := httptest.NewRecorder()
		pages.AuthError(rec, httptest.NewRequest(http.MethodGet, "/auth/auth-code-error", nil))

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body.String()).To(ContainSubstring("/login"))
	})
})
