package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/business-management/internal/core/events"
	"github.com/frahmantamala/business-management/internal/core/testdb"
	"github.com/frahmantamala/business-management/internal/personnel"
	"github.com/frahmantamala/business-management/internal/revalidate"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/frahmantamala/business-management/internal/user"
	"github.com/frahmantamala/business-management/internal/user/postgres"
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
		cache  *personnel.Cache
		router http.Handler
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		lg := logger.LoggerWrapper()
		bus = events.NewEventBus(lg)
		reval := revalidate.NewService(bus, nil, lg)
		svc := user.NewService(postgres.NewUserRepository(db, 0), reval, lg)
		cache = personnel.NewCache(svc.GetAll)
		cache.InvalidateOn(bus, personnel.Root)

		h := user.NewHandler(transport.NewBaseHandler(lg), svc, cache)
		r := chi.NewRouter()
		r.Use(revalidate.Middleware)
		r.Get("/personnel", h.List)
		r.Post("/personnel", h.Create)
		r.Get("/personnel/options", h.ListOptions)
		r.Get("/personnel/export", h.Export)
		r.Get("/personnel/{email}", h.Get)
		r.Patch("/personnel/{email}", h.Update)
		r.Delete("/personnel/{email}", h.Delete)
		router = r
	})

	AfterEach(func() {
		bus.Wait()
		cache.Close()
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	do := func(method, target, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, target, nil)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("creates a user and echoes the stale path", func() {
		rec := do(http.MethodPost, "/personnel", `{"email":"an@corp.vn","full_name":"Nguyen Van An"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Header().Get(revalidate.Header)).To(Equal("/dashboard/personnel"))

		rec = do(http.MethodGet, "/personnel/an@corp.vn", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"access_level":4`))
	})

	It("returns the list envelope", func() {
		do(http.MethodPost, "/personnel", `{"email":"an@corp.vn","full_name":"An"}`)
		do(http.MethodPost, "/personnel", `{"email":"binh@corp.vn","full_name":"Binh","access_level":3}`)

		rec := do(http.MethodGet, "/personnel?access_level=3", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var body struct {
			Data  []map[string]any `json:"data"`
			Count int64            `json:"count"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Count).To(Equal(int64(1)))
		Expect(body.Data[0]["email"]).To(Equal("binh@corp.vn"))
		Expect(rec.Header().Get(revalidate.Header)).To(BeEmpty())
	})

	It("rejects a bad page size", func() {
		rec := do(http.MethodGet, "/personnel?page_size=-1", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects unknown body fields", func() {
		rec := do(http.MethodPost, "/personnel", `{"email":"an@corp.vn","full_name":"An","password":"x"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("maps a missing user to 404", func() {
		rec := do(http.MethodPatch, "/personnel/ghost@corp.vn", `{"position":"Kỹ sư"}`)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring(`"RECORD_NOT_FOUND"`))

		rec = do(http.MethodDelete, "/personnel/ghost@corp.vn", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("serves options from the cache and refreshes them after a mutation", func() {
		do(http.MethodPost, "/personnel", `{"email":"an@corp.vn","full_name":"An"}`)
		bus.Wait()

		rec := do(http.MethodGet, "/personnel/options", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("an@corp.vn"))
		Expect(cache.State()).To(Equal(personnel.StateFresh))

		do(http.MethodPost, "/personnel", `{"email":"binh@corp.vn","full_name":"Binh"}`)
		bus.Wait()
		Expect(cache.State()).To(Equal(personnel.StateStale))

		users, err := cache.Get(context.Background(), false)
		Expect(err).NotTo(HaveOccurred())
		Expect(users).To(HaveLen(2))
	})

	It("exports an xlsx workbook", func() {
		do(http.MethodPost, "/personnel", `{"email":"an@corp.vn","full_name":"An"}`)

		rec := do(http.MethodGet, "/personnel/export", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Disposition")).To(HavePrefix("attachment; filename=nhan-su-"))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})
})
