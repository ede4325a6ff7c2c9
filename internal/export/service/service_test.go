package service

import (
	"context"
	"encoding/csv"
	"strings"
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
	"github.com/smallbiznis/livescan/internal/export/domain"
	exportrepo "github.com/smallbiznis/livescan/internal/export/repository"
	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
	recordrepo "github.com/smallbiznis/livescan/internal/servicerecord/repository"
	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

type fakeStore struct {
	objects map[string][]byte
	failPut bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	if f.failPut {
		return context.DeadlineExceeded
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key, fileName string) (string, error) {
	return "https://files.test/" + key + "?sig=abc", nil
}

// claimingRepo claims one candidate for another batch between selection
// and commit, reproducing a concurrent export run.
type claimingRepo struct {
	recorddomain.Repository
	db      *gorm.DB
	claimID int64
	rivalID int64
	done    bool
}

func (c *claimingRepo) FindUnbilledInRange(ctx context.Context, db *gorm.DB, start, end time.Time, orgIDs []int64) ([]recorddomain.ServiceRecord, error) {
	records, err := c.Repository.FindUnbilledInRange(ctx, db, start, end, orgIDs)
	if err != nil || c.done {
		return records, err
	}
	c.done = true
	_, err = c.Repository.MarkBilled(ctx, c.db, []int64{c.claimID}, c.rivalID, time.Now().UTC())
	return records, err
}

type fixture struct {
	t     *testing.T
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	store *fakeStore
	org   *catalogdomain.Organization
	orgB  *catalogdomain.Organization

	records recorddomain.Repository
	batches domain.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Organization{},
		&recorddomain.ServiceRecord{},
		&domain.ExportBatch{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{
		t:       t,
		db:      db,
		node:    node,
		clock:   clock.NewFakeClock(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)),
		store:   newFakeStore(),
		records: recordrepo.Provide(),
		batches: exportrepo.Provide(),
	}

	catRepo := catalogrepo.Provide()
	f.org = &catalogdomain.Organization{
		ID: node.Generate().Int64(), Name: "Alpha Agency", Slug: "alpha-agency",
		QBOCustomerName: "Alpha Agency (QBO)", InvoiceMemo: "PO 7700", Active: true,
	}
	require.NoError(t, catRepo.CreateOrganization(context.Background(), db, f.org))

	f.orgB = &catalogdomain.Organization{
		ID: node.Generate().Int64(), Name: "Beta Bureau", Slug: "beta-bureau",
		QBOCustomerName: "Beta Bureau (QBO)", Active: true,
	}
	require.NoError(t, catRepo.CreateOrganization(context.Background(), db, f.orgB))

	return f
}

func (f *fixture) service(records recorddomain.Repository) domain.ExportService {
	return New(Params{
		DB:      f.db,
		Log:     zap.NewNop(),
		GenID:   f.node,
		Clock:   f.clock,
		Repo:    f.batches,
		Records: records,
		Catalog: catalogrepo.Provide(),
		Store:   f.store,
	})
}

func (f *fixture) seedRecord(org *catalogdomain.Organization, day int, feeCents int64) *recorddomain.ServiceRecord {
	f.t.Helper()

	record := &recorddomain.ServiceRecord{
		ID:               f.node.Generate().Int64(),
		ServiceDate:      time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		ApplicantName:    "JANE DOE",
		BillingNumber:    "123456",
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		QBOCustomerName:  org.QBOCustomerName,
		InvoiceMemo:      org.InvoiceMemo,
		ServiceID:        1,
		ServiceName:      "Fingerprinting",
		QBOItemName:      "LiveScan:Fingerprinting",
		RateCents:        2500,
		FeeAmountCents:   feeCents,
		Quantity:         1,
		TechnicianName:   "J. Rivera",
	}
	if feeCents > 0 {
		record.FeeLabel = "DOJ"
	}
	require.NoError(f.t, f.records.Create(context.Background(), f.db, record))
	return record
}

func runReq() domain.RunRequest {
	return domain.RunRequest{
		ActorID:    7,
		ActorEmail: "admin@example.com",
		StartDate:  "2024-03-01",
		EndDate:    "2024-03-31",
		Format:     "csv",
		SelectAll:  true,
	}
}

func TestRunBillsRecordsAndUploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.seedRecord(f.org, 5, 3200)
	a2 := f.seedRecord(f.org, 10, 0)
	b1 := f.seedRecord(f.orgB, 7, 0)

	svc := f.service(f.records)
	res, err := svc.Run(ctx, runReq())
	require.NoError(t, err)

	require.Equal(t, domain.StatusUploaded, res.Batch.Status)
	require.Equal(t, 3, res.Batch.RecordCount)
	require.Equal(t, "LiveScan_HouseAccounts_2024-03-01_to_2024-03-31.csv", res.FileName)
	require.Equal(t, "admin@example.com", res.Batch.CreatedByEmail)
	require.Len(t, f.store.objects, 1)
	// Artifacts live under a stable namespace keyed by batch id.
	_, ok := f.store.objects["exports/"+res.Batch.ID+"/"+res.FileName]
	require.True(t, ok)

	rows := parseCSV(t, res.Data)
	// One service line per record, plus one fee line for the record
	// that collected a fee.
	require.Len(t, rows, 4)

	for _, id := range []int64{a1.ID, a2.ID, b1.ID} {
		rec, err := f.records.FindByID(ctx, f.db, id)
		require.NoError(t, err)
		require.True(t, rec.Billed)
		require.NotNil(t, rec.BilledAt)
		require.NotNil(t, rec.ExportBatchID)
	}

	// Billed records never come back as candidates.
	_, err = svc.Run(ctx, runReq())
	require.ErrorIs(t, err, domain.ErrNoRecords)
}

func TestRunNoRecordsCreatesNoBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := f.service(f.records)
	_, err := svc.Run(ctx, runReq())
	require.ErrorIs(t, err, domain.ErrNoRecords)

	var count int64
	require.NoError(t, f.db.Model(&domain.ExportBatch{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRunValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(f.records)

	req := runReq()
	req.Format = "pdf"
	_, err := svc.Run(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidFormat)

	req = runReq()
	req.StartDate = "2024-03-31"
	req.EndDate = "2024-03-01"
	_, err = svc.Run(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)

	req = runReq()
	req.StartDate = "03/01/2024"
	_, err = svc.Run(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)

	req = runReq()
	req.SelectAll = false
	_, err = svc.Run(ctx, req)
	require.ErrorIs(t, err, domain.ErrEmptyOrganizations)

	req = runReq()
	req.SelectAll = false
	req.OrganizationIDs = []string{"999999"}
	_, err = svc.Run(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestRunSingleDayRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedRecord(f.org, 15, 0)
	f.seedRecord(f.org, 16, 0)

	svc := f.service(f.records)
	req := runReq()
	req.StartDate = "2024-03-15"
	req.EndDate = "2024-03-15"

	res, err := svc.Run(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, res.Batch.RecordCount)
}

func TestRunScopedToOrganizations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedRecord(f.org, 5, 0)
	untouched := f.seedRecord(f.orgB, 7, 0)

	svc := f.service(f.records)
	req := runReq()
	req.SelectAll = false
	req.OrganizationIDs = []string{snowflake.ID(f.org.ID).String()}

	res, err := svc.Run(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, res.Batch.RecordCount)

	rec, err := f.records.FindByID(ctx, f.db, untouched.ID)
	require.NoError(t, err)
	require.False(t, rec.Billed)
}

func TestInvoiceNumbersPerOrganizationPerBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedRecord(f.org, 5, 3200)
	f.seedRecord(f.org, 6, 0)
	f.seedRecord(f.orgB, 7, 0)

	svc := f.service(f.records)
	res, err := svc.Run(ctx, runReq())
	require.NoError(t, err)

	rows := parseCSV(t, res.Data)
	invoiceByOrg := map[string]map[string]bool{}
	for _, row := range rows {
		org := row["Organization"]
		if invoiceByOrg[org] == nil {
			invoiceByOrg[org] = map[string]bool{}
		}
		invoiceByOrg[org][row["InvoiceNo"]] = true
	}
	// One invoice number per organization, distinct across organizations.
	require.Len(t, invoiceByOrg["Alpha Agency"], 1)
	require.Len(t, invoiceByOrg["Beta Bureau"], 1)
	for no := range invoiceByOrg["Alpha Agency"] {
		require.False(t, invoiceByOrg["Beta Bureau"][no])
	}

	// The same organization in a later batch gets a new number.
	f.seedRecord(f.org, 20, 0)
	res2, err := svc.Run(ctx, runReq())
	require.NoError(t, err)
	rows2 := parseCSV(t, res2.Data)
	require.Len(t, rows2, 1)
	for no := range invoiceByOrg["Alpha Agency"] {
		require.NotEqual(t, no, rows2[0]["InvoiceNo"])
	}
}

func TestRowContents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedRecord(f.org, 5, 3200)

	svc := f.service(f.records)
	res, err := svc.Run(ctx, runReq())
	require.NoError(t, err)

	rows := parseCSV(t, res.Data)
	require.Len(t, rows, 2)

	serviceRow, feeRow := rows[0], rows[1]
	require.Equal(t, "Alpha Agency (QBO)", serviceRow["Customer"])
	require.Equal(t, "LiveScan:Fingerprinting", serviceRow["Item(Product/Service)"])
	require.Equal(t, "25.00", serviceRow["ItemRate"])
	require.Equal(t, "25.00", serviceRow["ItemAmount"])
	require.Equal(t, "04/01/2024", serviceRow["InvoiceDate"])
	require.Equal(t, "04/15/2024", serviceRow["DueDate"])
	require.Equal(t, "Net 14", serviceRow["Terms"])
	require.Equal(t, "PO 7700", serviceRow["Memo"])
	require.Equal(t, "2024-03-05", serviceRow["ServiceDate"])
	require.Equal(t, "JANE DOE", serviceRow["Applicant"])
	require.Equal(t, "123456", serviceRow["BillingNumber"])
	require.Equal(t, "J. Rivera", serviceRow["Technician"])

	require.Equal(t, "DOJ/FBI Fee", feeRow["Item(Product/Service)"])
	require.Equal(t, "32.00", feeRow["ItemRate"])
	require.Equal(t, serviceRow["InvoiceNo"], feeRow["InvoiceNo"])
}

func TestConcurrentExportClaimsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	victim := f.seedRecord(f.org, 5, 0)
	f.seedRecord(f.org, 6, 0)
	f.seedRecord(f.orgB, 7, 0)

	rival := f.node.Generate().Int64()
	svc := f.service(&claimingRepo{
		Repository: f.records,
		db:         f.db,
		claimID:    victim.ID,
		rivalID:    rival,
	})

	res, err := svc.Run(ctx, runReq())
	require.NoError(t, err)

	// The rival claimed one record; this batch billed only the rest.
	require.Equal(t, 2, res.Batch.RecordCount)
	rows := parseCSV(t, res.Data)
	require.Len(t, rows, 2)

	rec, err := f.records.FindByID(ctx, f.db, victim.ID)
	require.NoError(t, err)
	require.Equal(t, rival, *rec.ExportBatchID)

	claimed, err := f.records.FindByBatch(ctx, f.db, rival)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
}

func TestUploadFailureMarksBatchFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.seedRecord(f.org, 5, 0)
	f.store.failPut = true

	svc := f.service(f.records)
	res, err := svc.Run(ctx, runReq())
	require.NoError(t, err)

	// The file still comes back; the batch records the failed upload.
	require.Equal(t, domain.StatusFailed, res.Batch.Status)
	require.NotEmpty(t, res.Batch.Error)
	require.NotEmpty(t, res.Data)

	stored, err := f.records.FindByID(ctx, f.db, rec.ID)
	require.NoError(t, err)
	require.True(t, stored.Billed)

	_, err = svc.DownloadURL(ctx, res.Batch.ID)
	require.ErrorIs(t, err, domain.ErrFileNotReady)
}

func TestHistoryAndDownload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedRecord(f.org, 5, 0)
	svc := f.service(f.records)

	res, err := svc.Run(ctx, runReq())
	require.NoError(t, err)

	history, page, err := svc.History(ctx, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, int64(1), page.TotalCount)
	require.Equal(t, res.Batch.ID, history[0].ID)

	url, err := svc.DownloadURL(ctx, res.Batch.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://files.test/exports/"+res.Batch.ID+"/"))

	_, err = svc.DownloadURL(ctx, "424242")
	require.ErrorIs(t, err, domain.ErrBatchNotFound)
}

func TestXLSXRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedRecord(f.org, 5, 3200)

	svc := f.service(f.records)
	req := runReq()
	req.Format = "xlsx"

	res, err := svc.Run(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "LiveScan_HouseAccounts_2024-03-01_to_2024-03-31.xlsx", res.FileName)
	require.NotEmpty(t, res.Data)
	// XLSX files are zip archives.
	require.Equal(t, []byte{'P', 'K'}, res.Data[:2])
}

func parseCSV(t *testing.T, data []byte) []map[string]string {
	t.Helper()

	reader := csv.NewReader(strings.NewReader(string(data)))
	all, err := reader.ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, all)

	header := all[0]
	rows := make([]map[string]string, 0, len(all)-1)
	for _, raw := range all[1:] {
		row := map[string]string{}
		for i, key := range header {
			row[key] = raw[i]
		}
		rows = append(rows, row)
	}
	return rows
}
