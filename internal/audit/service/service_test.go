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

	"github.com/smallbiznis/livescan/internal/audit/domain"
	"github.com/smallbiznis/livescan/internal/audit/repository"
	"github.com/smallbiznis/livescan/internal/auditcontext"
	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

func newService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake
}

func TestRecordAndList(t *testing.T) {
	svc, fake := newService(t)
	ctx := auditcontext.WithIPAddress(context.Background(), "10.1.2.3")
	ctx = auditcontext.WithUserAgent(ctx, "Mozilla/5.0")
	ctx = auditcontext.WithRequestID(ctx, "req-1")

	require.NoError(t, svc.Record(ctx, domain.Entry{
		ActorID:    42,
		ActorEmail: "admin@example.com",
		Action:     "organization.update",
		EntityType: "organization",
		EntityID:   "100",
		Metadata:   map[string]any{"field": "invoice_memo"},
	}))

	fake.Advance(time.Minute)
	require.NoError(t, svc.Record(ctx, domain.Entry{
		ActorID:    42,
		ActorEmail: "admin@example.com",
		Action:     "export.completed",
		EntityType: "export_batch",
		EntityID:   "200",
	}))

	res, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(2), res.TotalCount)
	require.Len(t, res.AuditLogs, 2)
	// Newest first.
	require.Equal(t, "export.completed", res.AuditLogs[0].Action)
	require.Equal(t, "10.1.2.3", res.AuditLogs[1].IPAddress)
	require.Equal(t, "req-1", res.AuditLogs[1].RequestID)
	require.Equal(t, "admin@example.com", res.AuditLogs[1].ActorEmail)

	res, err = svc.List(ctx, domain.ListRequest{EntityType: "organization"})
	require.NoError(t, err)
	require.Len(t, res.AuditLogs, 1)
	require.Equal(t, "organization.update", res.AuditLogs[0].Action)
}

func TestRecordMasksSecrets(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, domain.Entry{
		ActorID:    42,
		ActorEmail: "admin@example.com",
		Action:     "user.password_change",
		EntityType: "user",
		EntityID:   "42",
		Metadata: map[string]any{
			"reset_code": "483920",
			"reason":     "forgot",
		},
	}))

	res, err := svc.List(ctx, domain.ListRequest{Action: "user.password_change"})
	require.NoError(t, err)
	require.Len(t, res.AuditLogs, 1)
	require.Equal(t, "****3920", res.AuditLogs[0].Metadata["reset_code"])
	require.Equal(t, "forgot", res.AuditLogs[0].Metadata["reason"])
}

func TestRecordRequiresAction(t *testing.T) {
	svc, _ := newService(t)
	err := svc.Record(context.Background(), domain.Entry{EntityType: "user"})
	require.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestListValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	start := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.List(ctx, domain.ListRequest{StartAt: &start, EndAt: &end})
	require.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	_, err = svc.List(ctx, domain.ListRequest{ActorID: "not-a-number"})
	require.ErrorIs(t, err, domain.ErrInvalidActor)
}

func TestListPagination(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(ctx, domain.Entry{
			ActorID:    42,
			ActorEmail: "admin@example.com",
			Action:     "record.create",
			EntityType: "service_record",
		}))
	}

	res, err := svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, res.AuditLogs, 2)
	require.True(t, res.HasMore)

	res, err = svc.List(ctx, domain.ListRequest{Pagination: pagination.Pagination{Page: 2, PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, res.AuditLogs, 1)
	require.False(t, res.HasMore)
}
