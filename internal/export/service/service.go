package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	catalogdomain "github.com/smallbiznis/livescan/internal/catalog/domain"
	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/internal/export/domain"
	"github.com/smallbiznis/livescan/internal/export/render"
	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
	"github.com/smallbiznis/livescan/internal/storage"
	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Records recorddomain.Repository
	Catalog catalogdomain.Repository
	Store   storage.ObjectStore
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	records recorddomain.Repository
	catalog catalogdomain.Repository
	store   storage.ObjectStore
}

func New(p Params) domain.ExportService {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("export.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		records: p.Records,
		catalog: p.Catalog,
		store:   p.Store,
	}
}

// Run is deliberately not wrapped in one database transaction. The
// batch row is written before any record is touched so that a crash or
// race later in the run leaves a batch whose status tells the operator
// exactly how far it got, instead of silently rolling everything back.
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (*domain.RunResult, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format != domain.FormatCSV && format != domain.FormatXLSX {
		return nil, domain.ErrInvalidFormat
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	// The end date is inclusive; query with an exclusive upper bound.
	endExclusive := end.AddDate(0, 0, 1)

	orgIDs, err := s.resolveOrganizations(ctx, req)
	if err != nil {
		return nil, err
	}

	candidates, err := s.records.FindUnbilledInRange(ctx, s.db, start, endExclusive, orgIDs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoRecords
	}

	now := s.clock.Now()
	fileName := exportFileName(start, end, format)

	orgIDStrings := make(datatypes.JSONSlice[string], 0, len(orgIDs))
	for _, id := range orgIDs {
		orgIDStrings = append(orgIDStrings, strconv.FormatInt(id, 10))
	}

	batch := &domain.ExportBatch{
		ID:              s.genID.Generate().Int64(),
		RangeStart:      start,
		RangeEnd:        endExclusive,
		Format:          format,
		Status:          domain.StatusPending,
		OrganizationIDs: orgIDStrings,
		RecordCount:     len(candidates),
		FileName:        fileName,
		CreatedBy:       req.ActorID,
		CreatedByEmail:  req.ActorEmail,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, s.db, batch); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(candidates))
	for i := range candidates {
		ids = append(ids, candidates[i].ID)
	}

	claimed, err := s.records.MarkBilled(ctx, s.db, ids, batch.ID, now)
	if err != nil {
		s.fail(ctx, batch, err)
		return nil, err
	}

	billed := candidates
	if claimed != int64(len(candidates)) {
		// A concurrent export claimed part of the candidate set between
		// selection and commit. First committer wins; bill only what this
		// batch actually claimed.
		s.log.Warn("export claimed fewer records than selected",
			zap.Int64("batch_id", batch.ID),
			zap.Int("selected", len(candidates)),
			zap.Int64("claimed", claimed),
		)
		billed, err = s.records.FindByBatch(ctx, s.db, batch.ID)
		if err != nil {
			s.fail(ctx, batch, err)
			return nil, err
		}
		if len(billed) == 0 {
			s.fail(ctx, batch, domain.ErrNoRecords)
			return nil, domain.ErrNoRecords
		}
		batch.RecordCount = len(billed)
	}

	batch.Status = domain.StatusCommitted
	batch.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, batch); err != nil {
		return nil, err
	}

	rows := buildRows(billed, batch, now)

	var data []byte
	var contentType string
	switch format {
	case domain.FormatCSV:
		data, err = render.CSV(rows)
		contentType = render.CSVContentType
	case domain.FormatXLSX:
		data, err = render.XLSX(rows)
		contentType = render.XLSXContentType
	}
	if err != nil {
		s.fail(ctx, batch, err)
		return nil, err
	}

	key := "exports/" + strconv.FormatInt(batch.ID, 10) + "/" + fileName
	if err := s.store.Put(ctx, key, contentType, data); err != nil {
		// Records are already billed; surface the batch as failed but
		// still hand the rendered file back so the run is not lost.
		s.log.Error("export artifact upload failed",
			zap.Int64("batch_id", batch.ID),
			zap.Error(err),
		)
		s.fail(ctx, batch, err)
	} else {
		uploadedAt := s.clock.Now()
		batch.ObjectKey = key
		batch.Status = domain.StatusUploaded
		batch.UploadedAt = &uploadedAt
		batch.UpdatedAt = uploadedAt
		if err := s.repo.Update(ctx, s.db, batch); err != nil {
			return nil, err
		}
	}

	s.log.Info("export completed",
		zap.Int64("batch_id", batch.ID),
		zap.String("status", batch.Status),
		zap.Int("record_count", batch.RecordCount),
		zap.Int("rows", len(rows)),
	)

	return &domain.RunResult{
		Batch:       toBatchResponse(batch),
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (s *Service) History(ctx context.Context, page pagination.Pagination) ([]domain.BatchResponse, *pagination.PageInfo, error) {
	page.Normalize()

	batches, total, err := s.repo.List(ctx, s.db, page)
	if err != nil {
		return nil, nil, err
	}

	resp := make([]domain.BatchResponse, 0, len(batches))
	for i := range batches {
		resp = append(resp, toBatchResponse(&batches[i]))
	}
	return resp, pagination.BuildPageInfo(page, total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.BatchResponse, error) {
	batch, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toBatchResponse(batch)
	return &resp, nil
}

func (s *Service) DownloadURL(ctx context.Context, id string) (string, error) {
	batch, err := s.fetch(ctx, id)
	if err != nil {
		return "", err
	}
	if batch.Status != domain.StatusUploaded || batch.ObjectKey == "" {
		return "", domain.ErrFileNotReady
	}
	return s.store.PresignGet(ctx, batch.ObjectKey, batch.FileName)
}

func (s *Service) fetch(ctx context.Context, id string) (*domain.ExportBatch, error) {
	batchID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	batch, err := s.repo.FindByID(ctx, s.db, batchID.Int64())
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrBatchNotFound
	}
	return batch, nil
}

func (s *Service) resolveOrganizations(ctx context.Context, req domain.RunRequest) ([]int64, error) {
	if req.SelectAll {
		return nil, nil
	}
	if len(req.OrganizationIDs) == 0 {
		return nil, domain.ErrEmptyOrganizations
	}

	ids := make([]int64, 0, len(req.OrganizationIDs))
	for _, raw := range req.OrganizationIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil {
			return nil, domain.ErrInvalidOrganization
		}
		ids = append(ids, id.Int64())
	}

	orgs, err := s.catalog.FindOrganizationsByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	if len(orgs) != len(ids) {
		return nil, domain.ErrInvalidOrganization
	}
	return ids, nil
}

// fail records why a batch aborted after creation. Update errors are
// logged, not returned, because the original failure matters more.
func (s *Service) fail(ctx context.Context, batch *domain.ExportBatch, cause error) {
	batch.Status = domain.StatusFailed
	batch.Error = cause.Error()
	batch.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, batch); err != nil {
		s.log.Error("mark batch failed", zap.Int64("batch_id", batch.ID), zap.Error(err))
	}
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(startDate), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidDateRange
	}
	end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(endDate), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidDateRange
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, domain.ErrInvalidDateRange
	}
	return start, end, nil
}

func toBatchResponse(batch *domain.ExportBatch) domain.BatchResponse {
	return domain.BatchResponse{
		ID:              strconv.FormatInt(batch.ID, 10),
		RangeStart:      batch.RangeStart,
		RangeEnd:        batch.RangeEnd,
		Format:          batch.Format,
		Status:          batch.Status,
		OrganizationIDs: batch.OrganizationIDs,
		RecordCount:     batch.RecordCount,
		FileName:        batch.FileName,
		Error:           batch.Error,
		CreatedBy:       strconv.FormatInt(batch.CreatedBy, 10),
		CreatedByEmail:  batch.CreatedByEmail,
		UploadedAt:      batch.UploadedAt,
		CreatedAt:       batch.CreatedAt,
	}
}
