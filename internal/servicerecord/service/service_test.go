package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogdomain "github.com/smallbiznis/livescan/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/livescan/internal/catalog/repository"
	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/internal/servicerecord/domain"
	"github.com/smallbiznis/livescan/internal/servicerecord/repository"
)

type fixture struct {
	svc     domain.RecordService
	db      *gorm.DB
	clock   *clock.FakeClock
	org     *catalogdomain.Organization
	catSvc  *catalogdomain.Service
	fee     *catalogdomain.Fee
	tech    *catalogdomain.Technician
	adminID int64
	staffID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Organization{}, &catalogdomain.Service{}, &catalogdomain.Fee{}, &catalogdomain.Technician{},
		&domain.ServiceRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	f := &fixture{
		db:      db,
		clock:   fc,
		adminID: node.Generate().Int64(),
		staffID: node.Generate().Int64(),
	}

	catRepo := catalogrepo.Provide()
	f.org = &catalogdomain.Organization{
		ID: node.Generate().Int64(), Name: "Denton PD", Slug: "denton-pd",
		QBOCustomerName: "Denton PD", InvoiceMemo: "PO 1200", Active: true,
	}
	require.NoError(t, catRepo.CreateOrganization(ctx, db, f.org))

	f.catSvc = &catalogdomain.Service{
		ID: node.Generate().Int64(), Name: "Fingerprinting", QBOItemName: "LiveScan:Fingerprinting",
		RateCents: 2500, Active: true,
	}
	require.NoError(t, catRepo.CreateService(ctx, db, f.catSvc))

	f.fee = &catalogdomain.Fee{ID: node.Generate().Int64(), Label: "DOJ", AmountCents: 3200, Active: true}
	require.NoError(t, catRepo.CreateFee(ctx, db, f.fee))

	f.tech = &catalogdomain.Technician{ID: node.Generate().Int64(), Name: "J. Rivera", Active: true}
	require.NoError(t, catRepo.CreateTechnician(ctx, db, f.tech))

	f.svc = New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   fc,
		Repo:    repository.Provide(),
		Catalog: catRepo,
	})
	return f
}

func (f *fixture) admin() domain.Actor { return domain.Actor{ID: f.adminID, Admin: true} }
func (f *fixture) staff() domain.Actor { return domain.Actor{ID: f.staffID} }

func (f *fixture) createReq() domain.CreateRequest {
	return domain.CreateRequest{
		Actor:          f.staff(),
		ServiceDate:    "2024-03-10",
		ApplicantName:  "jane doe",
		BillingNumber:  "123456",
		OrganizationID: snowflake.ID(f.org.ID).String(),
		ServiceID:      snowflake.ID(f.catSvc.ID).String(),
	}
}

func TestCreateSnapshotsCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.createReq()
	req.FeeID = snowflake.ID(f.fee.ID).String()
	req.TechnicianID = snowflake.ID(f.tech.ID).String()

	rec, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "JANE DOE", rec.ApplicantName)
	require.Equal(t, "Denton PD", rec.OrganizationName)
	require.Equal(t, "PO 1200", rec.InvoiceMemo)
	require.Equal(t, int64(2500), rec.RateCents)
	require.Equal(t, "DOJ", rec.FeeLabel)
	require.Equal(t, int64(3200), rec.FeeAmountCents)
	require.Equal(t, "J. Rivera", rec.TechnicianName)
	require.False(t, rec.Billed)

	// Later catalog edits must not change the record.
	require.NoError(t, f.db.Model(&catalogdomain.Service{}).
		Where("id = ?", f.catSvc.ID).Update("rate_cents", 9900).Error)

	fetched, err := f.svc.Get(ctx, f.staff(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2500), fetched.RateCents)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.createReq()
	req.BillingNumber = "12345"
	_, err := f.svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidBillingNumber)

	req = f.createReq()
	req.BillingNumber = "12345a"
	_, err = f.svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidBillingNumber)

	req = f.createReq()
	req.ServiceDate = "03/10/2024"
	_, err = f.svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidServiceDate)

	req = f.createReq()
	req.ApplicantName = "  "
	_, err = f.svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidApplicant)
}

func TestCreateAgainstSuspendedOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&catalogdomain.Organization{}).
		Where("id = ?", f.org.ID).Update("suspended", true).Error)

	_, err := f.svc.Create(ctx, f.createReq())
	require.ErrorIs(t, err, domain.ErrOrganizationInactive)
}

func TestStaffVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Create(ctx, f.createReq())
	require.NoError(t, err)

	other := domain.Actor{ID: 42}
	_, err = f.svc.Get(ctx, other, rec.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Get(ctx, f.admin(), rec.ID)
	require.NoError(t, err)

	list, _, err := f.svc.List(ctx, domain.ListRequest{Actor: other})
	require.NoError(t, err)
	require.Empty(t, list)

	list, page, err := f.svc.List(ctx, domain.ListRequest{Actor: f.admin()})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int64(1), page.TotalCount)
}

func TestBilledRecordImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Create(ctx, f.createReq())
	require.NoError(t, err)

	now := f.clock.Now()
	require.NoError(t, f.db.Model(&domain.ServiceRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{"billed": true, "billed_at": now}).Error)

	notes := "changed"
	_, err = f.svc.Update(ctx, domain.UpdateRequest{Actor: f.admin(), ID: rec.ID, Notes: &notes})
	require.ErrorIs(t, err, domain.ErrRecordBilled)
}

func TestQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Zero defaults to one.
	rec, err := f.svc.Create(ctx, f.createReq())
	require.NoError(t, err)
	require.Equal(t, 1, rec.Quantity)
	require.Equal(t, int64(2500), rec.TotalCents)

	req := f.createReq()
	req.Quantity = -2
	_, err = f.svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	req = f.createReq()
	req.Quantity = 3
	req.FeeID = snowflake.ID(f.fee.ID).String()
	rec, err = f.svc.Create(ctx, req)
	require.NoError(t, err)
	require.Equal(t, int64(3*(2500+3200)), rec.TotalCents)

	zero := 0
	_, err = f.svc.Update(ctx, domain.UpdateRequest{Actor: f.staff(), ID: rec.ID, Quantity: &zero})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestUpdateClearsFee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.createReq()
	req.FeeID = snowflake.ID(f.fee.ID).String()
	rec, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	require.Equal(t, int64(3200), rec.FeeAmountCents)

	empty := ""
	updated, err := f.svc.Update(ctx, domain.UpdateRequest{Actor: f.staff(), ID: rec.ID, FeeID: &empty})
	require.NoError(t, err)
	require.Empty(t, updated.FeeLabel)
	require.Zero(t, updated.FeeAmountCents)
}

func TestUpdateMovesRecordToAnotherOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Create(ctx, f.createReq())
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	catRepo := catalogrepo.Provide()

	other := &catalogdomain.Organization{
		ID: node.Generate().Int64(), Name: "Lewisville PD", Slug: "lewisville-pd",
		QBOCustomerName: "Lewisville PD (QBO)", InvoiceMemo: "PO 7788", Active: true,
	}
	require.NoError(t, catRepo.CreateOrganization(ctx, f.db, other))

	otherID := snowflake.ID(other.ID).String()
	updated, err := f.svc.Update(ctx, domain.UpdateRequest{
		Actor: f.staff(), ID: rec.ID, OrganizationID: &otherID,
	})
	require.NoError(t, err)
	require.Equal(t, otherID, updated.OrganizationID)
	require.Equal(t, "Lewisville PD", updated.OrganizationName)
	require.Equal(t, "PO 7788", updated.InvoiceMemo)

	// Suspended and unknown organizations are rejected.
	suspended := &catalogdomain.Organization{
		ID: node.Generate().Int64(), Name: "Frozen PD", Slug: "frozen-pd",
		Active: true, Suspended: true,
	}
	require.NoError(t, catRepo.CreateOrganization(ctx, f.db, suspended))
	suspendedID := snowflake.ID(suspended.ID).String()
	_, err = f.svc.Update(ctx, domain.UpdateRequest{
		Actor: f.staff(), ID: rec.ID, OrganizationID: &suspendedID,
	})
	require.ErrorIs(t, err, domain.ErrOrganizationInactive)

	missing := node.Generate().String()
	_, err = f.svc.Update(ctx, domain.UpdateRequest{
		Actor: f.staff(), ID: rec.ID, OrganizationID: &missing,
	})
	require.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestMarkBilledGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	repo := repository.Provide()

	first, err := f.svc.Create(ctx, f.createReq())
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.createReq())
	require.NoError(t, err)

	firstID, _ := snowflake.ParseString(first.ID)
	secondID, _ := snowflake.ParseString(second.ID)
	ids := []int64{firstID.Int64(), secondID.Int64()}

	claimed, err := repo.MarkBilled(ctx, f.db, ids, 777, f.clock.Now())
	require.NoError(t, err)
	require.Equal(t, int64(2), claimed)

	// A second claim finds nothing unbilled.
	claimed, err = repo.MarkBilled(ctx, f.db, ids, 888, f.clock.Now())
	require.NoError(t, err)
	require.Zero(t, claimed)

	records, err := repo.FindByBatch(ctx, f.db, 777)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestFindUnbilledInRangeOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	repo := repository.Provide()
	node, _ := snowflake.NewNode(2)

	mk := func(orgName string, day int) {
		rec := &domain.ServiceRecord{
			ID:               node.Generate().Int64(),
			ServiceDate:      time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
			ApplicantName:    "A",
			BillingNumber:    "123456",
			OrganizationID:   1,
			OrganizationName: orgName,
			ServiceID:        1,
		}
		require.NoError(t, repo.Create(ctx, f.db, rec))
	}

	mk("Zeta", 2)
	mk("Alpha", 5)
	mk("Alpha", 1)
	mk("Mid", 31) // outside the range

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	records, err := repo.FindUnbilledInRange(ctx, f.db, start, end, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "Alpha", records[0].OrganizationName)
	require.Equal(t, 1, records[0].ServiceDate.Day())
	require.Equal(t, "Alpha", records[1].OrganizationName)
	require.Equal(t, 5, records[1].ServiceDate.Day())
	require.Equal(t, "Zeta", records[2].OrganizationName)
}
