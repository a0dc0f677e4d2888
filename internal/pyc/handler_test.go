package pyc_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/business-management/internal/auth"
	"github.com/frahmantamala/business-management/internal/core/events"
	"github.com/frahmantamala/business-management/internal/core/testdb"
	"github.com/frahmantamala/business-management/internal/pyc"
	"github.com/frahmantamala/business-management/internal/pyc/postgres"
	"github.com/frahmantamala/business-management/internal/revalidate"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/frahmantamala/business-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Handler", func() {
	var (
		db     *gorm.DB
		bus    *events.EventBus
		router http.Handler
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		lg := logger.LoggerWrapper()
		bus = events.NewEventBus(lg)
		svc := pyc.NewService(postgres.NewPYCRepository(db, 0), &inbox{}, names{}, revalidate.NewService(bus, nil, lg), lg)
		h := pyc.NewHandler(transport.NewBaseHandler(lg), svc)

		r := chi.NewRouter()
		r.Use(revalidate.Middleware)
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if email := r.Header.Get("X-Test-User"); email != "" {
					r = r.WithContext(auth.ContextWithUser(r.Context(), &auth.SessionUser{ID: email, Email: email}))
				}
				next.ServeHTTP(w, r)
			})
		})
		r.Route("/pyc", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Patch("/", h.Update)
				r.Delete("/", h.Delete)
				r.Post("/submit", h.Submit)
				r.Post("/approve", h.Approve)
				r.Post("/reject", h.Reject)
			})
		})
		router = r
	})

	AfterEach(func() {
		bus.Wait()
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	do := func(user, method, target, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, target, nil)
		}
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("runs a request through submit and approval", func() {
		rec := do("an@corp.vn", http.MethodPost, "/pyc", `{"id":"PYC-A","title":"Vat tu","approver_email":"binh@corp.vn","details":[{"name":"Cat","quantity":3}]}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Header().Get(revalidate.Header)).To(Equal("/dashboard/pyc"))

		rec = do("an@corp.vn", http.MethodPost, "/pyc/PYC-A/submit", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get(revalidate.Header)).To(Equal("/dashboard/pyc,/dashboard/pyc/PYC-A"))

		rec = do("binh@corp.vn", http.MethodGet, "/pyc?to_approve=true", "")
		var list struct {
			Data  []map[string]any `json:"data"`
			Count int64            `json:"count"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
		Expect(list.Count).To(Equal(int64(1)))
		Expect(list.Data[0]["author_name"]).To(Equal("an@corp.vn"))

		Expect(do("an@corp.vn", http.MethodPost, "/pyc/PYC-A/approve", "").Code).To(Equal(http.StatusForbidden))

		rec = do("binh@corp.vn", http.MethodPost, "/pyc/PYC-A/approve", `{"note":"ok"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"approved"`))
	})

	It("rejects a reject without a note", func() {
		do("an@corp.vn", http.MethodPost, "/pyc", `{"id":"PYC-B","title":"t","approver_email":"binh@corp.vn","details":[{"name":"Cat","quantity":3}]}`)
		do("an@corp.vn", http.MethodPost, "/pyc/PYC-B/submit", "")

		rec := do("binh@corp.vn", http.MethodPost, "/pyc/PYC-B/reject", `{}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(`"field":"note"`))
	})

	It("reports 404 for an unknown request and 401 without a session", func() {
		Expect(do("an@corp.vn", http.MethodGet, "/pyc/missing", "").Code).To(Equal(http.StatusNotFound))
		Expect(do("", http.MethodPost, "/pyc", `{"title":"t"}`).Code).To(Equal(http.StatusUnauthorized))
	})

	It("lists the caller's own requests with mine=true", func() {
		do("an@corp.vn", http.MethodPost, "/pyc", `{"title":"mine","details":[]}`)
		do("binh@corp.vn", http.MethodPost, "/pyc", `{"title":"theirs","details":[]}`)

		rec := do("an@corp.vn", http.MethodGet, "/pyc?mine=true", "")
		Expect(rec.Body.String()).To(ContainSubstring(`"mine"`))
		Expect(rec.Body.String()).NotTo(ContainSubstring(`"theirs"`))
	})
})
