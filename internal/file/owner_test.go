package file_test

import (
	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/file"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseOwner", func() {
	DescribeTable("accepts every known kind",
		func(kind string, path string) {
			owner, err := file.ParseOwner(kind, " 42 ")
			Expect(err).NotTo(HaveOccurred())
			Expect(owner.ID).To(Equal("42"))
			Expect(owner.Path()).To(Equal(path))
		},
		Entry("projects", "projects", "/dashboard/projects/42"),
		Entry("project items", "project_items", "/dashboard/projects/items/42"),
		Entry("pyc", "pyc", "/dashboard/pyc/42"),
		Entry("dntt", "dntt", "/dashboard/dntt/42"),
		Entry("users", "users", "/dashboard/personnel/42"),
		Entry("warehouses", "warehouses", "/dashboard/system/warehouses/42"),
	)

	It("rejects an unknown table", func() {
		_, err := file.ParseOwner("invoices", "1")
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidOwner)))
	})

	It("requires a ref id", func() {
		_, err := file.ParseOwner("projects", "  ")
		Expect(err).To(HaveOccurred())
	})

	It("escapes ids in the dashboard path", func() {
		owner, _ := file.ParseOwner("users", "a b@corp.vn")
		Expect(owner.Path()).To(Equal("/dashboard/personnel/a%20b@corp.vn"))
	})
})
