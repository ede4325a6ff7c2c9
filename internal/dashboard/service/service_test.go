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
	exportdomain "github.com/smallbiznis/livescan/internal/export/domain"
	exportrepo "github.com/smallbiznis/livescan/internal/export/repository"
	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
	recordrepo "github.com/smallbiznis/livescan/internal/servicerecord/repository"
)

func TestStats(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Organization{},
		&recorddomain.ServiceRecord{},
		&exportdomain.ExportBatch{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(now)
	ctx := context.Background()

	catRepo := catalogrepo.Provide()
	recRepo := recordrepo.Provide()
	batchRepo := exportrepo.Provide()

	orgs := []catalogdomain.Organization{
		{ID: node.Generate().Int64(), Name: "Alpha", Slug: "alpha", Active: true},
		{ID: node.Generate().Int64(), Name: "Beta", Slug: "beta", Active: true},
		{ID: node.Generate().Int64(), Name: "Gamma", Slug: "gamma", Active: true, Suspended: true},
		{ID: node.Generate().Int64(), Name: "Delta", Slug: "delta", Active: false},
	}
	for i := range orgs {
		require.NoError(t, catRepo.CreateOrganization(ctx, db, &orgs[i]))
	}

	newRecord := func(serviceDate, createdAt time.Time, billed bool) {
		rec := &recorddomain.ServiceRecord{
			ID:               node.Generate().Int64(),
			ServiceDate:      serviceDate,
			ApplicantName:    "JANE DOE",
			BillingNumber:    "123456",
			OrganizationID:   orgs[0].ID,
			OrganizationName: orgs[0].Name,
			ServiceID:        1,
			ServiceName:      "Fingerprinting",
			RateCents:        2500,
			Quantity:         1,
			Billed:           billed,
		}
		require.NoError(t, recRepo.Create(ctx, db, rec))
		require.NoError(t, db.Model(rec).Update("created_at", createdAt).Error)
	}

	// Two unbilled, one of them older than 30 days, one billed.
	newRecord(now.AddDate(0, 0, -2), now.AddDate(0, 0, -2), false)
	newRecord(now.AddDate(0, 0, -45), now.AddDate(0, 0, -45), false)
	newRecord(now.AddDate(0, 0, -3), now.AddDate(0, 0, -3), true)

	uploadedAt := now.AddDate(0, 0, -1)
	require.NoError(t, batchRepo.Create(ctx, db, &exportdomain.ExportBatch{
		ID:          node.Generate().Int64(),
		RangeStart:  now.AddDate(0, -1, 0),
		RangeEnd:    now,
		Format:      exportdomain.FormatCSV,
		Status:      exportdomain.StatusUploaded,
		FileName:    "LiveScan_HouseAccounts_2024-03-15_to_2024-04-15.csv",
		RecordCount: 7,
		UploadedAt:  &uploadedAt,
	}))

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   fake,
		Records: recRepo,
		Catalog: catRepo,
		Batches: batchRepo,
	})

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.UnbilledRecords)
	require.Equal(t, int64(1), stats.UnbilledOlderThan30d)
	require.Equal(t, int64(2), stats.RecordsThisMonth)
	require.Equal(t, int64(2), stats.ActiveOrganizations)
	require.Equal(t, int64(1), stats.SuspendedOrgs)
	require.NotNil(t, stats.LastExportAt)
	require.Equal(t, "LiveScan_HouseAccounts_2024-03-15_to_2024-04-15.csv", stats.LastExportFileName)
	require.Equal(t, 7, stats.LastExportRecords)
	require.True(t, stats.ExportedThisMonth)
}

func TestStatsEmptyDatabase(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Organization{},
		&recorddomain.ServiceRecord{},
		&exportdomain.ExportBatch{},
	))

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)),
		Records: recordrepo.Provide(),
		Catalog: catalogrepo.Provide(),
		Batches: exportrepo.Provide(),
	})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.UnbilledRecords)
	require.Nil(t, stats.LastExportAt)
	require.False(t, stats.ExportedThisMonth)
}
