package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogdomain "github.com/smallbiznis/livescan/internal/catalog/domain"
	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/internal/servicerecord/domain"
	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

// LiveScan billing numbers are fixed six-digit ATI/OCA style values.
var billingNumberPattern = regexp.MustCompile(`^\d{6}$`)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Catalog catalogdomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	catalog catalogdomain.Repository
}

func New(p Params) domain.RecordService {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("servicerecord.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		catalog: p.Catalog,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	applicant := strings.ToUpper(strings.TrimSpace(req.ApplicantName))
	if applicant == "" {
		return nil, domain.ErrInvalidApplicant
	}

	billingNumber := strings.TrimSpace(req.BillingNumber)
	if !billingNumberPattern.MatchString(billingNumber) {
		return nil, domain.ErrInvalidBillingNumber
	}

	serviceDate, err := parseServiceDate(req.ServiceDate)
	if err != nil {
		return nil, err
	}

	orgID, err := snowflake.ParseString(strings.TrimSpace(req.OrganizationID))
	if err != nil {
		return nil, domain.ErrInvalidOrganization
	}
	org, err := s.catalog.FindOrganizationByID(ctx, s.db, orgID.Int64())
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrInvalidOrganization
	}
	if !org.Billable() {
		return nil, domain.ErrOrganizationInactive
	}

	svcID, err := snowflake.ParseString(strings.TrimSpace(req.ServiceID))
	if err != nil {
		return nil, domain.ErrInvalidService
	}
	catalogSvc, err := s.catalog.FindServiceByID(ctx, s.db, svcID.Int64())
	if err != nil {
		return nil, err
	}
	if catalogSvc == nil || !catalogSvc.Active {
		return nil, domain.ErrInvalidService
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	record := &domain.ServiceRecord{
		ID:            s.genID.Generate().Int64(),
		ServiceDate:   serviceDate,
		ApplicantName: applicant,
		BillingNumber: billingNumber,

		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		QBOCustomerName:  org.QBOCustomerName,
		InvoiceMemo:      org.InvoiceMemo,

		ServiceID:   catalogSvc.ID,
		ServiceName: catalogSvc.Name,
		QBOItemName: catalogSvc.QBOItemName,
		RateCents:   catalogSvc.RateCents,

		Quantity: quantity,
		Notes:    strings.TrimSpace(req.Notes),

		CreatedBy: req.Actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if feeID := strings.TrimSpace(req.FeeID); feeID != "" {
		if err := s.applyFee(ctx, record, feeID); err != nil {
			return nil, err
		}
	}
	if techID := strings.TrimSpace(req.TechnicianID); techID != "" {
		if err := s.applyTechnician(ctx, record, techID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, s.db, record); err != nil {
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, *pagination.PageInfo, error) {
	filter := domain.ListFilter{Billed: req.Billed, Page: req.Page}
	filter.Page.Normalize()

	if !req.Actor.Admin {
		filter.CreatedBy = req.Actor.ID
	}

	if from := strings.TrimSpace(req.From); from != "" {
		t, err := parseServiceDate(from)
		if err != nil {
			return nil, nil, err
		}
		filter.From = &t
	}
	if to := strings.TrimSpace(req.To); to != "" {
		t, err := parseServiceDate(to)
		if err != nil {
			return nil, nil, err
		}
		end := t.AddDate(0, 0, 1)
		filter.To = &end
	}
	if orgID := strings.TrimSpace(req.OrganizationID); orgID != "" {
		id, err := snowflake.ParseString(orgID)
		if err != nil {
			return nil, nil, domain.ErrInvalidOrganization
		}
		filter.OrganizationID = id.Int64()
	}

	records, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, nil, err
	}

	resp := make([]domain.Response, 0, len(records))
	for i := range records {
		resp = append(resp, toResponse(&records[i]))
	}
	return resp, pagination.BuildPageInfo(filter.Page, total), nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Response, error) {
	record, err := s.fetchVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	record, err := s.fetchVisible(ctx, req.Actor, req.ID)
	if err != nil {
		return nil, err
	}
	if record.Billed {
		return nil, domain.ErrRecordBilled
	}

	if req.ApplicantName != nil {
		applicant := strings.ToUpper(strings.TrimSpace(*req.ApplicantName))
		if applicant == "" {
			return nil, domain.ErrInvalidApplicant
		}
		record.ApplicantName = applicant
	}
	if req.BillingNumber != nil {
		billingNumber := strings.TrimSpace(*req.BillingNumber)
		if !billingNumberPattern.MatchString(billingNumber) {
			return nil, domain.ErrInvalidBillingNumber
		}
		record.BillingNumber = billingNumber
	}
	if req.ServiceDate != nil {
		serviceDate, err := parseServiceDate(*req.ServiceDate)
		if err != nil {
			return nil, err
		}
		record.ServiceDate = serviceDate
	}
	if req.OrganizationID != nil {
		orgID, err := snowflake.ParseString(strings.TrimSpace(*req.OrganizationID))
		if err != nil {
			return nil, domain.ErrInvalidOrganization
		}
		org, err := s.catalog.FindOrganizationByID(ctx, s.db, orgID.Int64())
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, domain.ErrInvalidOrganization
		}
		if !org.Billable() {
			return nil, domain.ErrOrganizationInactive
		}
		record.OrganizationID = org.ID
		record.OrganizationName = org.Name
		record.QBOCustomerName = org.QBOCustomerName
		record.InvoiceMemo = org.InvoiceMemo
	}
	if req.ServiceID != nil {
		svcID, err := snowflake.ParseString(strings.TrimSpace(*req.ServiceID))
		if err != nil {
			return nil, domain.ErrInvalidService
		}
		catalogSvc, err := s.catalog.FindServiceByID(ctx, s.db, svcID.Int64())
		if err != nil {
			return nil, err
		}
		if catalogSvc == nil || !catalogSvc.Active {
			return nil, domain.ErrInvalidService
		}
		record.ServiceID = catalogSvc.ID
		record.ServiceName = catalogSvc.Name
		record.QBOItemName = catalogSvc.QBOItemName
		record.RateCents = catalogSvc.RateCents
	}
	if req.FeeID != nil {
		if feeID := strings.TrimSpace(*req.FeeID); feeID == "" {
			record.FeeID = nil
			record.FeeLabel = ""
			record.FeeAmountCents = 0
		} else if err := s.applyFee(ctx, record, feeID); err != nil {
			return nil, err
		}
	}
	if req.TechnicianID != nil {
		if techID := strings.TrimSpace(*req.TechnicianID); techID == "" {
			record.TechnicianID = nil
			record.TechnicianName = ""
		} else if err := s.applyTechnician(ctx, record, techID); err != nil {
			return nil, err
		}
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		record.Quantity = *req.Quantity
	}
	if req.Notes != nil {
		record.Notes = strings.TrimSpace(*req.Notes)
	}

	record.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, record); err != nil {
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) fetchVisible(ctx context.Context, actor domain.Actor, id string) (*domain.ServiceRecord, error) {
	recordID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, s.db, recordID.Int64())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Admin && record.CreatedBy != actor.ID {
		return nil, domain.ErrForbidden
	}
	return record, nil
}

func (s *Service) applyFee(ctx context.Context, record *domain.ServiceRecord, id string) error {
	feeID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidFee
	}
	fee, err := s.catalog.FindFeeByID(ctx, s.db, feeID.Int64())
	if err != nil {
		return err
	}
	if fee == nil || !fee.Active {
		return domain.ErrInvalidFee
	}
	fid := fee.ID
	record.FeeID = &fid
	record.FeeLabel = fee.Label
	record.FeeAmountCents = fee.AmountCents
	return nil
}

func (s *Service) applyTechnician(ctx context.Context, record *domain.ServiceRecord, id string) error {
	techID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidTechnician
	}
	tech, err := s.catalog.FindTechnicianByID(ctx, s.db, techID.Int64())
	if err != nil {
		return err
	}
	if tech == nil || !tech.Active {
		return domain.ErrInvalidTechnician
	}
	tid := tech.ID
	record.TechnicianID = &tid
	record.TechnicianName = tech.Name
	return nil
}

// parseServiceDate interprets a YYYY-MM-DD value as midnight UTC.
func parseServiceDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, domain.ErrInvalidServiceDate
	}
	return t, nil
}

func toResponse(record *domain.ServiceRecord) domain.Response {
	resp := domain.Response{
		ID:            strconv.FormatInt(record.ID, 10),
		ServiceDate:   record.ServiceDate,
		ApplicantName: record.ApplicantName,
		BillingNumber: record.BillingNumber,

		OrganizationID:   strconv.FormatInt(record.OrganizationID, 10),
		OrganizationName: record.OrganizationName,
		InvoiceMemo:      record.InvoiceMemo,

		ServiceID:   strconv.FormatInt(record.ServiceID, 10),
		ServiceName: record.ServiceName,
		RateCents:   record.RateCents,

		FeeLabel:       record.FeeLabel,
		FeeAmountCents: record.FeeAmountCents,
		TechnicianName: record.TechnicianName,

		Quantity:   record.Quantity,
		TotalCents: record.TotalCents(),

		Notes:     record.Notes,
		Billed:    record.Billed,
		BilledAt:  record.BilledAt,
		CreatedBy: strconv.FormatInt(record.CreatedBy, 10),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.FeeID != nil {
		resp.FeeID = strconv.FormatInt(*record.FeeID, 10)
	}
	if record.TechnicianID != nil {
		resp.TechnicianID = strconv.FormatInt(*record.TechnicianID, 10)
	}
	if record.ExportBatchID != nil {
		resp.ExportBatchID = strconv.FormatInt(*record.ExportBatchID, 10)
	}
	return resp
}
