package pyc_test

import (
	"context"

	"github.com/frahmantamala/business-management/internal"
	pycDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/pyc"
	"github.com/frahmantamala/business-management/internal/core/testdb"
	"github.com/frahmantamala/business-management/internal/pyc"
	"github.com/frahmantamala/business-management/internal/pyc/postgres"
	"github.com/frahmantamala/business-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Service", func() {
	const (
		author   = "an@corp.vn"
		approver = "binh@corp.vn"
	)

	var (
		db    *gorm.DB
		svc   *pyc.Service
		box   *inbox
		reval *recorder
		ctx   context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		box = &inbox{}
		reval = &recorder{}
		ctx = context.Background()
		directory := names{author: "Nguyen Van An", approver: "Tran Thi Binh"}
		svc = pyc.NewService(postgres.NewPYCRepository(db, 0), box, directory, reval, logger.LoggerWrapper())
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	create := func(withApprover bool) *pyc.Response {
		dto := pyc.CreatePYCDTO{
			Title:   "Vat tu thang 3",
			Details: pycDatamodel.Lines{{Name: "Xi mang", Unit: "bao", Quantity: 40}},
		}
		if withApprover {
			a := "Binh@Corp.vn"
			dto.ApproverEmail = &a
		}
		p, err := svc.Add(ctx, author, dto)
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	It("creates a draft with a generated number and display names", func() {
		p := create(true)
		Expect(p.ID).To(MatchRegexp(`^PYC-\d{8}-[0-9A-F]{6}$`))
		Expect(p.Status).To(Equal(pycDatamodel.StatusDraft))
		Expect(*p.ApproverEmail).To(Equal(approver))
		Expect(p.AuthorName).To(Equal("Nguyen Van An"))
		Expect(p.ApproverName).To(Equal("Tran Thi Binh"))
	})

	It("validates detail lines by index", func() {
		_, err := svc.Add(ctx, author, pyc.CreatePYCDTO{
			Title:   "x",
			Details: pycDatamodel.Lines{{Name: "ok", Quantity: 1}, {Name: "", Quantity: 0}},
		})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		details := appErr.Details.(internal.ValidationErrors)
		var fields []string
		for _, e := range details.Errors {
			fields = append(fields, e.Field)
		}
		Expect(fields).To(ConsistOf("details[1].name", "details[1].quantity"))
	})

	Describe("Submit", func() {
		It("requires an approver", func() {
			p := create(false)
			_, err := svc.Submit(ctx, author, p.ID)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("approver"))
			Expect(box.sent).To(BeEmpty())
		})

		It("moves to pending and notifies the approver", func() {
			p := create(true)
			got, err := svc.Submit(ctx, author, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(pycDatamodel.StatusPending))

			n := box.last()
			Expect(n.UserEmail).To(Equal(approver))
			Expect(n.Message).To(ContainSubstring("Nguyen Van An"))
			Expect(*n.Link).To(Equal(pyc.Path(p.ID)))
		})

		It("only lets the author submit", func() {
			p := create(true)
			_, err := svc.Submit(ctx, approver, p.ID)
			Expect(err).To(MatchError(pyc.ErrNotAuthor))
		})

		It("cannot submit twice", func() {
			p := create(true)
			_, err := svc.Submit(ctx, author, p.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Submit(ctx, author, p.ID)
			Expect(err).To(MatchError(pyc.ErrInvalidTransition))
		})
	})

	Describe("decisions", func() {
		var id string

		BeforeEach(func() {
			id = create(true).ID
			_, err := svc.Submit(ctx, author, id)
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets only the approver approve", func() {
			_, err := svc.Approve(ctx, author, id, pyc.DecisionDTO{})
			Expect(err).To(MatchError(pyc.ErrNotApprover))

			got, err := svc.Approve(ctx, "BINH@corp.vn", id, pyc.DecisionDTO{Note: "ok"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(pycDatamodel.StatusApproved))

			n := box.last()
			Expect(n.UserEmail).To(Equal(author))
			Expect(n.Type).To(Equal("success"))
		})

		It("requires a note to reject and notifies with an error type", func() {
			_, err := svc.Reject(ctx, approver, id, pyc.DecisionDTO{Note: "  "})
			Expect(err).To(HaveOccurred())

			got, err := svc.Reject(ctx, approver, id, pyc.DecisionDTO{Note: "Thieu bao gia"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Note).To(Equal("Thieu bao gia"))
			Expect(box.last().Type).To(Equal("error"))
			Expect(box.last().Message).To(ContainSubstring("Thieu bao gia"))
		})

		It("does not approve outside pending", func() {
			_, err := svc.Approve(ctx, approver, id, pyc.DecisionDTO{})
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Reject(ctx, approver, id, pyc.DecisionDTO{Note: "changed my mind"})
			Expect(err).To(MatchError(pyc.ErrInvalidTransition))
		})

		It("lets the author edit and resubmit after a rejection", func() {
			_, err := svc.Reject(ctx, approver, id, pyc.DecisionDTO{Note: "them dong"})
			Expect(err).NotTo(HaveOccurred())

			lines := pycDatamodel.Lines{{Name: "Xi mang", Quantity: 40}, {Name: "Cat", Quantity: 2}}
			updated, err := svc.Update(ctx, author, id, pyc.UpdatePYCDTO{Details: &lines})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Details).To(HaveLen(2))

			resubmitted, err := svc.Submit(ctx, author, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(resubmitted.Status).To(Equal(pycDatamodel.StatusPending))
			Expect(resubmitted.Note).To(BeEmpty())
		})

		It("blocks edits and deletes while pending", func() {
			title := "new"
			_, err := svc.Update(ctx, author, id, pyc.UpdatePYCDTO{Title: &title})
			Expect(err).To(MatchError(pyc.ErrInvalidTransition))
			Expect(svc.Delete(ctx, author, id)).To(MatchError(pyc.ErrInvalidTransition))
		})

		It("keeps the decision when the notification cannot be stored", func() {
			box.fail = true
			got, err := svc.Approve(ctx, approver, id, pyc.DecisionDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(pycDatamodel.StatusApproved))
		})
	})

	It("deletes a draft and revalidates its path", func() {
		p := create(false)
		Expect(svc.Delete(ctx, author, p.ID)).To(Succeed())
		Expect(reval.calls[len(reval.calls)-1]).To(Equal([]string{pyc.Root, pyc.Path(p.ID)}))
		_, err := svc.Get(ctx, p.ID)
		Expect(err).To(MatchError(pyc.ErrPYCNotFound))
	})
})
