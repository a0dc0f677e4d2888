package dntt_test

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/business-management/internal/auth"
	"github.com/frahmantamala/business-management/internal/core/testdb"
	"github.com/frahmantamala/business-management/internal/dntt"
	"github.com/frahmantamala/business-management/internal/dntt/postgres"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/frahmantamala/business-management/internal/transport/middleware"
	"github.com/frahmantamala/business-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Handler", func() {
	var (
		db     *gorm.DB
		router http.Handler
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		lg := logger.LoggerWrapper()
		svc := dntt.NewService(postgres.NewDNTTRepository(db, 0), &inbox{}, nil, nopRevalidator{}, lg)
		h := dntt.NewHandler(transport.NewBaseHandler(lg), svc)
		access := levels{"giamdoc@corp.vn": 2, "truongphong@corp.vn": 3}

		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if email := r.Header.Get("X-Test-User"); email != "" {
					r = r.WithContext(auth.ContextWithUser(r.Context(), &auth.SessionUser{ID: email, Email: email}))
				}
				next.ServeHTTP(w, r)
			})
		})
		r.Route("/dntt", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Patch("/", h.Update)
				r.Delete("/", h.Delete)
				r.With(middleware.RequireAccessLevel(access, 3)).Post("/approve", h.Approve)
				r.With(middleware.RequireAccessLevel(access, 3)).Post("/reject", h.Reject)
				r.With(middleware.RequireAccessLevel(access, 2)).Post("/paid", h.MarkPaid)
			})
		})
		router = r
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	do := func(user, method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("gates decisions by access level", func() {
		rec := do("an@corp.vn", http.MethodPost, "/dntt", `{"id":"DNTT-1","title":"Tam ung","amount":1000000}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		Expect(do("an@corp.vn", http.MethodPost, "/dntt/DNTT-1/approve", "").Code).To(Equal(http.StatusForbidden))
		Expect(do("truongphong@corp.vn", http.MethodPost, "/dntt/DNTT-1/approve", "").Code).To(Equal(http.StatusOK))
		Expect(do("truongphong@corp.vn", http.MethodPost, "/dntt/DNTT-1/paid", "").Code).To(Equal(http.StatusForbidden))

		rec = do("giamdoc@corp.vn", http.MethodPost, "/dntt/DNTT-1/paid", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"paid"`))
	})

	It("rejects a zero amount and a second approval", func() {
		Expect(do("an@corp.vn", http.MethodPost, "/dntt", `{"title":"x","amount":0}`).Code).To(Equal(http.StatusBadRequest))

		do("an@corp.vn", http.MethodPost, "/dntt", `{"id":"DNTT-2","title":"x","amount":10}`)
		Expect(do("giamdoc@corp.vn", http.MethodPost, "/dntt/DNTT-2/approve", "").Code).To(Equal(http.StatusOK))
		Expect(do("giamdoc@corp.vn", http.MethodPost, "/dntt/DNTT-2/approve", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("lists only the caller's requests with mine=true", func() {
		do("an@corp.vn", http.MethodPost, "/dntt", `{"title":"cua an","amount":10}`)
		do("binh@corp.vn", http.MethodPost, "/dntt", `{"title":"cua binh","amount":10}`)

		rec := do("an@corp.vn", http.MethodGet, "/dntt?mine=true", "")
		Expect(rec.Body.String()).To(ContainSubstring("cua an"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("cua binh"))
	})
})
