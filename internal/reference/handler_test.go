package reference_test

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/business-management/internal/core/testdb"
	"github.com/frahmantamala/business-management/internal/reference"
	"github.com/frahmantamala/business-management/internal/reference/postgres"
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
		router http.Handler
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		lg := logger.LoggerWrapper()
		svc := reference.NewService(postgres.NewStores(db, 0), nopRevalidator{}, lg)
		h := reference.NewHandler(transport.NewBaseHandler(lg), svc)

		r := chi.NewRouter()
		r.Get("/reference", h.Tables)
		r.Get("/reference/{table}", h.List)
		r.Post("/reference/{table}", h.Create)
		r.Get("/reference/{table}/{id}", h.Get)
		r.Patch("/reference/{table}/{id}", h.Update)
		r.Delete("/reference/{table}/{id}", h.Delete)
		router = r
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	do := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("serves the column configuration", func() {
		rec := do(http.MethodGet, "/reference", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"name":"departments"`))
		Expect(rec.Body.String()).To(ContainSubstring(`"hierarchical":true`))
	})

	It("runs the generic add, edit, delete flow", func() {
		rec := do(http.MethodPost, "/reference/job_levels", `{"code":"L1","name":"Nhan vien"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring(`"id":1`))

		rec = do(http.MethodPatch, "/reference/job_levels/1", `{"name":"Chuyen vien"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Chuyen vien"))

		Expect(do(http.MethodDelete, "/reference/job_levels/1", "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/reference/job_levels/1", "").Code).To(Equal(http.StatusNotFound))
	})

	It("returns 404 for an unknown table and 409 for a department with children", func() {
		Expect(do(http.MethodGet, "/reference/invoices", "").Code).To(Equal(http.StatusNotFound))

		do(http.MethodPost, "/reference/departments", `{"code":"A","name":"A"}`)
		do(http.MethodPost, "/reference/departments", `{"code":"A1","name":"A1","parent_id":1}`)
		Expect(do(http.MethodDelete, "/reference/departments/1", "").Code).To(Equal(http.StatusConflict))
	})

	It("rejects a non-integer parent filter", func() {
		Expect(do(http.MethodGet, "/reference/departments?parent_id=abc", "").Code).To(Equal(http.StatusBadRequest))
	})
})
