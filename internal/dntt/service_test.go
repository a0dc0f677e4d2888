package dntt_test

import (
	"context"

	"github.com/frahmantamala/business-management/internal"
	dnttDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/dntt"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/frahmantamala/business-management/internal/core/testdb"
	"github.com/frahmantamala/business-management/internal/dntt"
	"github.com/frahmantamala/business-management/internal/dntt/postgres"
	"github.com/frahmantamala/business-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Service", func() {
	const requester = "an@corp.vn"

	var (
		db  *gorm.DB
		svc *dntt.Service
		box *inbox
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		box = &inbox{}
		ctx = context.Background()
		svc = dntt.NewService(postgres.NewDNTTRepository(db, 0), box, nil, nopRevalidator{}, logger.LoggerWrapper())
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	add := func() *dntt.Response {
		d, err := svc.Add(ctx, requester, dntt.CreateDNTTDTO{Title: "Tam ung", Amount: 5_000_000})
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	It("creates a pending request with a generated number", func() {
		d := add()
		Expect(d.ID).To(MatchRegexp(`^DNTT-\d{8}-[0-9A-F]{6}$`))
		Expect(d.Status).To(Equal(dnttDatamodel.StatusPending))
		Expect(d.RequesterName).To(Equal(requester))
	})

	It("rejects a non-positive amount", func() {
		_, err := svc.Add(ctx, requester, dntt.CreateDNTTDTO{Title: "x", Amount: 0})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidAmount)))
	})

	It("goes pending, approved, paid and notifies at each step", func() {
		d := add()

		approved, err := svc.Approve(ctx, "giamdoc@corp.vn", d.ID, dntt.DecisionDTO{})
		Expect(err).NotTo(HaveOccurred())
		Expect(approved.Status).To(Equal(dnttDatamodel.StatusApproved))

		paid, err := svc.MarkPaid(ctx, "ketoan@corp.vn", d.ID, dntt.DecisionDTO{Note: "UNC 0042"})
		Expect(err).NotTo(HaveOccurred())
		Expect(paid.Status).To(Equal(dnttDatamodel.StatusPaid))
		Expect(paid.Note).To(Equal("UNC 0042"))

		Expect(box.sent).To(HaveLen(2))
		for _, n := range box.sent {
			Expect(n.UserEmail).To(Equal(requester))
			Expect(*n.Link).To(Equal(dntt.Path(d.ID)))
		}
		Expect(box.sent[1].Message).To(ContainSubstring("5000000 VND"))
	})

	It("cannot pay a pending request", func() {
		d := add()
		_, err := svc.MarkPaid(ctx, "ketoan@corp.vn", d.ID, dntt.DecisionDTO{})
		Expect(err).To(MatchError(dntt.ErrInvalidTransition))
		Expect(box.sent).To(BeEmpty())
	})

	It("only lets the requester edit while pending", func() {
		d := add()
		amount := int64(7_500_000)

		_, err := svc.Update(ctx, "binh@corp.vn", d.ID, dntt.UpdateDNTTDTO{Amount: &amount})
		Expect(err).To(MatchError(dntt.ErrNotRequester))

		updated, err := svc.Update(ctx, requester, d.ID, dntt.UpdateDNTTDTO{Amount: &amount})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Amount).To(Equal(amount))

		_, err = svc.Reject(ctx, "giamdoc@corp.vn", d.ID, dntt.DecisionDTO{Note: "sai so tien"})
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.Update(ctx, requester, d.ID, dntt.UpdateDNTTDTO{Amount: &amount})
		Expect(err).To(MatchError(dntt.ErrInvalidTransition))
		Expect(svc.Delete(ctx, requester, d.ID)).To(MatchError(dntt.ErrInvalidTransition))
	})

	It("filters by status", func() {
		add()
		d := add()
		_, err := svc.Approve(ctx, "giamdoc@corp.vn", d.ID, dntt.DecisionDTO{})
		Expect(err).NotTo(HaveOccurred())

		res, err := svc.List(ctx, query.Filter{Equals: map[string]any{"status": "approved"}}, query.Page{Page: 1, PageSize: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Count).To(Equal(int64(1)))
		Expect(res.Data[0].ID).To(Equal(d.ID))
	})
})
