package file_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/business-management/internal/auth"
	"github.com/frahmantamala/business-management/internal/core/events"
	"github.com/frahmantamala/business-management/internal/core/testdb"
	"github.com/frahmantamala/business-management/internal/file"
	"github.com/frahmantamala/business-management/internal/file/postgres"
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
		svc := file.NewService(postgres.NewFileRepository(db, 0), revalidate.NewService(bus, nil, lg), lg)
		h := file.NewHandler(transport.NewBaseHandler(lg), svc)

		r := chi.NewRouter()
		r.Use(revalidate.Middleware)
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := auth.ContextWithUser(r.Context(), &auth.SessionUser{ID: "u1", Email: "An@Corp.vn"})
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
		r.Get("/files", h.List)
		r.Post("/files", h.Create)
		r.Get("/files/{id}", h.Get)
		r.Patch("/files/{id}", h.Update)
		r.Delete("/files/{id}", h.Delete)
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

	It("attaches a file and revalidates the owner's page", func() {
		rec := do(http.MethodPost, "/files", `{"table_name":"projects","ref_id":"DA-01","name":"ban-ve.pdf","url":"https://s/ban-ve.pdf","type":"Document"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Header().Get(revalidate.Header)).To(Equal("/dashboard/files,/dashboard/projects/DA-01"))

		var body map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["uploaded_by"]).To(Equal("an@corp.vn"))
	})

	It("defaults the type and rejects unknown owners", func() {
		rec := do(http.MethodPost, "/files", `{"table_name":"projects","ref_id":"DA-01","name":"a","url":"u"}`)
		Expect(rec.Body.String()).To(ContainSubstring(`"type":"Other"`))

		rec = do(http.MethodPost, "/files", `{"table_name":"invoices","ref_id":"1","name":"a","url":"u"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("INVALID_OWNER"))
	})

	It("lists by owner", func() {
		do(http.MethodPost, "/files", `{"table_name":"projects","ref_id":"DA-01","name":"a","url":"u"}`)
		do(http.MethodPost, "/files", `{"table_name":"projects","ref_id":"DA-02","name":"b","url":"u"}`)

		rec := do(http.MethodGet, "/files?table_name=projects&ref_id=DA-01", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var res struct {
			Data  []map[string]any `json:"data"`
			Count int64            `json:"count"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &res)).To(Succeed())
		Expect(res.Count).To(Equal(int64(1)))
		Expect(res.Data[0]["name"]).To(Equal("a"))
	})

	It("renames and deletes", func() {
		do(http.MethodPost, "/files", `{"table_name":"dntt","ref_id":"DNTT-1","name":"a","url":"u"}`)

		rec := do(http.MethodPatch, "/files/1", `{"name":"hoa-don.pdf","type":"Attachment"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"hoa-don.pdf"`))

		Expect(do(http.MethodDelete, "/files/1", "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/files/1", "").Code).To(Equal(http.StatusNotFound))
	})
})
