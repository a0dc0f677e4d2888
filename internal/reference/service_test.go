package reference_test

import (
	"context"

	"github.com/frahmantamala/business-management/internal"
	referenceDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/reference"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/core/testdb"
	"github.com/frahmantamala/business-management/internal/reference"
	"github.com/frahmantamala/business-management/internal/reference/postgres"
	"github.com/frahmantamala/business-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func codeOf(err error) internal.ErrorCode {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue(), "expected an AppError, got %v", err)
	if details, ok := appErr.Details.(internal.ValidationErrors); ok && len(details.Errors) > 0 {
		return internal.ErrorCode(details.Errors[0].Code)
	}
	return appErr.Code
}

var _ = Describe("Service", func() {
	var (
		db  *gorm.DB
		svc *reference.Service
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		svc = reference.NewService(postgres.NewStores(db, 0), nopRevalidator{}, logger.LoggerWrapper())
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	department := func(code string, parent any) int64 {
		body := map[string]any{"code": code, "name": "Phong " + code}
		if parent != nil {
			body["parent_id"] = parent
		}
		row, err := svc.Add(ctx, "departments", body)
		Expect(err).NotTo(HaveOccurred())
		return row.(*referenceDatamodel.Department).ID
	}

	It("exposes every table", func() {
		var names []string
		for _, t := range svc.Tables() {
			names = append(names, t.Name)
		}
		Expect(names).To(ConsistOf("branches", "departments", "job_positions", "job_levels", "job_functions", "warehouses", "suppliers"))
	})

	It("creates and lists rows ordered by name", func() {
		for _, n := range []string{"Kho Long An", "Kho Binh Duong"} {
			_, err := svc.Add(ctx, "warehouses", map[string]any{"code": n[4:7], "name": n})
			Expect(err).NotTo(HaveOccurred())
		}

		res, err := svc.List(ctx, "warehouses", query.Filter{}, query.Page{Page: 1, PageSize: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Count).To(Equal(int64(2)))
		Expect(res.Data[0].(*referenceDatamodel.Warehouse).Name).To(Equal("Kho Binh Duong"))
	})

	It("validates against the column config", func() {
		_, err := svc.Add(ctx, "suppliers", map[string]any{"name": "Hoa Phat", "color": "red"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		var fields []string
		for _, e := range appErr.Details.(internal.ValidationErrors).Errors {
			fields = append(fields, e.Field)
		}
		Expect(fields).To(ConsistOf("color", "code"))
	})

	It("maps a duplicate code to a conflict", func() {
		_, err := svc.Add(ctx, "branches", map[string]any{"code": "HN", "name": "Ha Noi"})
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.Add(ctx, "branches", map[string]any{"code": "HN", "name": "Ha Noi 2"})
		Expect(codeOf(err)).To(Equal(internal.ErrCodeDuplicateRecord))
	})

	It("rejects a warehouse pointing at an unknown project", func() {
		_, err := svc.Add(ctx, "warehouses", map[string]any{"code": "K1", "name": "Kho", "project_id": "DA-404"})
		Expect(codeOf(err)).To(Equal(internal.ErrCodeInvalidReference))
	})

	It("returns not found for an unknown table", func() {
		_, err := svc.List(ctx, "invoices", query.Filter{}, query.Page{Page: 1, PageSize: 10})
		Expect(err).To(MatchError(reference.ErrTableNotFound))
	})

	Describe("department hierarchy", func() {
		It("accepts one level of nesting", func() {
			root := department("KT", nil)
			child := department("KT-TH", float64(root))

			got, err := svc.Get(ctx, "departments", child)
			Expect(err).NotTo(HaveOccurred())
			Expect(*got.(*referenceDatamodel.Department).ParentID).To(Equal(root))
		})

		It("refuses a third level", func() {
			root := department("KT", nil)
			child := department("KT-TH", float64(root))

			_, err := svc.Add(ctx, "departments", map[string]any{"code": "KT-TH-1", "name": "x", "parent_id": float64(child)})
			Expect(codeOf(err)).To(Equal(internal.ErrCodeInvalidHierarchy))
		})

		It("refuses a missing parent", func() {
			_, err := svc.Add(ctx, "departments", map[string]any{"code": "X", "name": "x", "parent_id": float64(99)})
			Expect(codeOf(err)).To(Equal(internal.ErrCodeInvalidHierarchy))
		})

		It("refuses to nest a department that has children", func() {
			a := department("A", nil)
			department("A-1", float64(a))
			b := department("B", nil)

			_, err := svc.Update(ctx, "departments", a, map[string]any{"parent_id": float64(b)})
			Expect(codeOf(err)).To(Equal(internal.ErrCodeInvalidHierarchy))

			_, err = svc.Update(ctx, "departments", b, map[string]any{"parent_id": float64(b)})
			Expect(codeOf(err)).To(Equal(internal.ErrCodeInvalidHierarchy))
		})

		It("refuses to delete a department with children", func() {
			a := department("A", nil)
			child := department("A-1", float64(a))

			Expect(svc.Delete(ctx, "departments", a)).To(MatchError(reference.ErrHasChildren))
			Expect(svc.Delete(ctx, "departments", child)).To(Succeed())
			Expect(svc.Delete(ctx, "departments", a)).To(Succeed())
		})

		It("filters top-level departments with parent_id=null", func() {
			a := department("A", nil)
			department("A-1", float64(a))

			res, err := svc.List(ctx, "departments", query.Filter{Equals: map[string]any{"parent_id": "null"}}, query.Page{Page: 1, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(int64(1)))

			res, err = svc.List(ctx, "departments", query.Filter{Equals: map[string]any{"parent_id": "1"}}, query.Page{Page: 1, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(int64(1)))
		})
	})
})
