package project_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/business-management/internal/core/events"
	"github.com/frahmantamala/business-management/internal/core/testdb"
	"github.com/frahmantamala/business-management/internal/project"
	projectPostgres "github.com/frahmantamala/business-management/internal/project/postgres"
	"github.com/frahmantamala/business-management/internal/revalidate"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/frahmantamala/business-management/internal/user"
	userPostgres "github.com/frahmantamala/business-management/internal/user/postgres"
	"github.com/frahmantamala/business-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type listBody struct {
	Data  []map[string]any `json:"data"`
	Count int64            `json:"count"`
}

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
		reval := revalidate.NewService(bus, nil, lg)
		users := user.NewService(userPostgres.NewUserRepository(db, 0), reval, lg)
		svc := project.NewService(projectPostgres.NewProjectRepository(db, 0), users, reval, lg)
		h := project.NewHandler(transport.NewBaseHandler(lg), svc)
		uh := user.NewHandler(transport.NewBaseHandler(lg), users, nil)

		r := chi.NewRouter()
		r.Use(revalidate.Middleware)
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Patch("/", h.Update)
				r.Delete("/", h.Delete)
				r.Get("/personnel", h.ListPersonnel)
				r.Get("/items", h.ListItems)
				r.Post("/items", h.CreateItem)
				r.Post("/items/bulk", h.CreateItems)
				r.Get("/items/{itemID}", h.GetItem)
				r.Patch("/items/{itemID}", h.UpdateItem)
				r.Delete("/items/{itemID}", h.DeleteItem)
			})
		})
		r.Post("/personnel", uh.Create)
		r.Post("/personnel/{email}/projects", uh.AssignProject)
		router = r
	})

	AfterEach(func() {
		bus.Wait()
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

	BeforeEach(func() {
		rec := do(http.MethodPost, "/projects", `{"id":"DA-01","name":"Nhà xưởng Long An","location":"Long An"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Header().Get(revalidate.Header)).To(Equal("/dashboard/projects"))
	})

	It("updates a project and marks both views stale", func() {
		rec := do(http.MethodPatch, "/projects/DA-01", `{"status":"active"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get(revalidate.Header)).To(Equal("/dashboard/projects,/dashboard/projects/DA-01"))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"active"`))
	})

	It("rejects an unknown status", func() {
		rec := do(http.MethodPatch, "/projects/DA-01", `{"status":"abandoned"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("bulk inserts items atomically", func() {
		rec := do(http.MethodPost, "/projects/DA-01/items/bulk", `{"items":[
			{"wbs":"1.1","name":"Đào móng","unit":"m3","quantity":120},
			{"wbs":"1.2","name":"Cốt thép","unit":"tấn","quantity":8.5}
		]}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Header().Get(revalidate.Header)).To(ContainSubstring("/dashboard/projects/DA-01/items"))

		rec = do(http.MethodPost, "/projects/DA-01/items/bulk", `{"items":[
			{"wbs":"2.1","name":"Xây tường","quantity":10},
			{"wbs":"","name":"","quantity":-1}
		]}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("items[1].wbs"))

		rec = do(http.MethodGet, "/projects/DA-01/items?page_size=0", "")
		var body listBody
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Count).To(Equal(int64(2)))
	})

	It("returns 404 for items of an unknown project", func() {
		rec := do(http.MethodPost, "/projects/DA-99/items", `{"wbs":"1","name":"A"}`)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		rec = do(http.MethodGet, "/projects/DA-99/items", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("validates the item id", func() {
		rec := do(http.MethodGet, "/projects/DA-01/items/abc", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("lists the personnel assigned to a project", func() {
		Expect(do(http.MethodPost, "/personnel", `{"email":"an@corp.vn","full_name":"An"}`).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodPost, "/personnel", `{"email":"binh@corp.vn","full_name":"Binh"}`).Code).To(Equal(http.StatusCreated))
		rec := do(http.MethodPost, "/personnel/an@corp.vn/projects", `{"project_id":"DA-01"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get(revalidate.Header)).To(ContainSubstring("/dashboard/projects/DA-01"))

		rec = do(http.MethodGet, "/projects/DA-01/personnel", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var body listBody
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Count).To(Equal(int64(1)))
		Expect(body.Data[0]["email"]).To(Equal("an@corp.vn"))
	})

	It("deletes a project", func() {
		Expect(do(http.MethodDelete, "/projects/DA-01", "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/projects/DA-01", "").Code).To(Equal(http.StatusNotFound))
	})
})
