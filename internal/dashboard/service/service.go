package service

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogdomain "github.com/smallbiznis/livescan/internal/catalog/domain"
	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/internal/dashboard/domain"
	exportdomain "github.com/smallbiznis/livescan/internal/export/domain"
	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
)

const staleCutoff = 30 * 24 * time.Hour

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Records recorddomain.Repository
	Catalog catalogdomain.Repository
	Batches exportdomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	records recorddomain.Repository
	catalog catalogdomain.Repository
	batches exportdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("dashboard.service"),
		clock:   p.Clock,
		records: p.Records,
		catalog: p.Catalog,
		batches: p.Batches,
	}
}

func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	now := s.clock.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &domain.Stats{}

	var err error
	if stats.UnbilledRecords, err = s.records.CountUnbilled(ctx, s.db); err != nil {
		return nil, err
	}
	if stats.UnbilledOlderThan30d, err = s.records.CountUnbilledBefore(ctx, s.db, now.Add(-staleCutoff)); err != nil {
		return nil, err
	}
	if stats.RecordsThisMonth, err = s.records.CountCreatedBetween(ctx, s.db, monthStart, now); err != nil {
		return nil, err
	}

	active, suspended := true, true
	notSuspended := false
	if stats.ActiveOrganizations, err = s.catalog.CountOrganizations(ctx, s.db, catalogdomain.OrganizationFilter{
		Active:    &active,
		Suspended: &notSuspended,
	}); err != nil {
		return nil, err
	}
	if stats.SuspendedOrgs, err = s.catalog.CountOrganizations(ctx, s.db, catalogdomain.OrganizationFilter{
		Suspended: &suspended,
	}); err != nil {
		return nil, err
	}

	latest, err := s.batches.FindLatestUploaded(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		stats.LastExportAt = latest.UploadedAt
		stats.LastExportFileName = latest.FileName
		stats.LastExportRecords = latest.RecordCount
		if latest.UploadedAt != nil && !latest.UploadedAt.Before(monthStart) {
			stats.ExportedThisMonth = true
		}
	}

	return stats, nil
}
