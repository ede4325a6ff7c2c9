package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/internal/catalog/domain"
	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/pkg/db"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.CatalogService {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateOrganization(ctx context.Context, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	org := &domain.Organization{
		ID:              s.genID.Generate().Int64(),
		Name:            name,
		Slug:            slug.Make(name),
		QBOCustomerName: strings.TrimSpace(req.QBOCustomerName),
		InvoiceMemo:     strings.TrimSpace(req.InvoiceMemo),
		BillingEmail:    strings.TrimSpace(req.BillingEmail),
		ContactName:     strings.TrimSpace(req.ContactName),
		Phone:           strings.TrimSpace(req.Phone),
		Address:         strings.TrimSpace(req.Address),
		Active:          true,
		Suspended:       false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if org.QBOCustomerName == "" {
		org.QBOCustomerName = name
	}

	if err := s.repo.CreateOrganization(ctx, s.db, org); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}

	resp := toOrganizationResponse(org)
	return &resp, nil
}

func (s *Service) ListOrganizations(ctx context.Context, req domain.ListOrganizationsRequest) ([]domain.OrganizationResponse, error) {
	orgs, err := s.repo.FindOrganizations(ctx, s.db, domain.OrganizationFilter{
		Active:    req.Active,
		Suspended: req.Suspended,
		Query:     req.Query,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		resp = append(resp, toOrganizationResponse(&orgs[i]))
	}
	return resp, nil
}

func (s *Service) GetOrganization(ctx context.Context, id string) (*domain.OrganizationResponse, error) {
	orgID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	org, err := s.repo.FindOrganizationByID(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}

	resp := toOrganizationResponse(org)
	return &resp, nil
}

func (s *Service) UpdateOrganization(ctx context.Context, req domain.UpdateOrganizationRequest) (*domain.OrganizationResponse, error) {
	orgID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	org, err := s.repo.FindOrganizationByID(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		org.Name = name
		org.Slug = slug.Make(name)
	}
	if req.QBOCustomerName != nil {
		org.QBOCustomerName = strings.TrimSpace(*req.QBOCustomerName)
	}
	if req.InvoiceMemo != nil {
		org.InvoiceMemo = strings.TrimSpace(*req.InvoiceMemo)
	}
	if req.BillingEmail != nil {
		org.BillingEmail = strings.TrimSpace(*req.BillingEmail)
	}
	if req.ContactName != nil {
		org.ContactName = strings.TrimSpace(*req.ContactName)
	}
	if req.Phone != nil {
		org.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		org.Address = strings.TrimSpace(*req.Address)
	}
	if req.Active != nil {
		org.Active = *req.Active
	}
	if req.Suspended != nil {
		org.Suspended = *req.Suspended
	}

	org.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateOrganization(ctx, s.db, org); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}

	resp := toOrganizationResponse(org)
	return &resp, nil
}

func (s *Service) CreateService(ctx context.Context, req domain.CreateServiceRequest) (*domain.ServiceResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.RateCents < 0 {
		return nil, domain.ErrInvalidRate
	}

	now := s.clock.Now()
	svc := &domain.Service{
		ID:          s.genID.Generate().Int64(),
		Name:        name,
		QBOItemName: strings.TrimSpace(req.QBOItemName),
		RateCents:   req.RateCents,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if svc.QBOItemName == "" {
		svc.QBOItemName = name
	}

	if err := s.repo.CreateService(ctx, s.db, svc); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}

	resp := toServiceResponse(svc)
	return &resp, nil
}

func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]domain.ServiceResponse, error) {
	services, err := s.repo.FindServices(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.ServiceResponse, 0, len(services))
	for i := range services {
		resp = append(resp, toServiceResponse(&services[i]))
	}
	return resp, nil
}

func (s *Service) UpdateService(ctx context.Context, req domain.UpdateServiceRequest) (*domain.ServiceResponse, error) {
	svcID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	svc, err := s.repo.FindServiceByID(ctx, s.db, svcID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		svc.Name = name
	}
	if req.QBOItemName != nil {
		svc.QBOItemName = strings.TrimSpace(*req.QBOItemName)
	}
	if req.RateCents != nil {
		if *req.RateCents < 0 {
			return nil, domain.ErrInvalidRate
		}
		svc.RateCents = *req.RateCents
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	svc.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateService(ctx, s.db, svc); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}

	resp := toServiceResponse(svc)
	return &resp, nil
}

func (s *Service) CreateFee(ctx context.Context, req domain.CreateFeeRequest) (*domain.FeeResponse, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, domain.ErrInvalidLabel
	}
	if req.AmountCents < 0 {
		return nil, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	fee := &domain.Fee{
		ID:          s.genID.Generate().Int64(),
		Label:       label,
		AmountCents: req.AmountCents,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateFee(ctx, s.db, fee); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}

	resp := toFeeResponse(fee)
	return &resp, nil
}

func (s *Service) ListFees(ctx context.Context, activeOnly bool) ([]domain.FeeResponse, error) {
	fees, err := s.repo.FindFees(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.FeeResponse, 0, len(fees))
	for i := range fees {
		resp = append(resp, toFeeResponse(&fees[i]))
	}
	return resp, nil
}

func (s *Service) UpdateFee(ctx context.Context, req domain.UpdateFeeRequest) (*domain.FeeResponse, error) {
	feeID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	fee, err := s.repo.FindFeeByID(ctx, s.db, feeID)
	if err != nil {
		return nil, err
	}
	if fee == nil {
		return nil, domain.ErrNotFound
	}

	if req.Label != nil {
		label := strings.TrimSpace(*req.Label)
		if label == "" {
			return nil, domain.ErrInvalidLabel
		}
		fee.Label = label
	}
	if req.AmountCents != nil {
		if *req.AmountCents < 0 {
			return nil, domain.ErrInvalidAmount
		}
		fee.AmountCents = *req.AmountCents
	}
	if req.Active != nil {
		fee.Active = *req.Active
	}

	fee.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateFee(ctx, s.db, fee); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}

	resp := toFeeResponse(fee)
	return &resp, nil
}

func (s *Service) CreateTechnician(ctx context.Context, req domain.CreateTechnicianRequest) (*domain.TechnicianResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	tech := &domain.Technician{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateTechnician(ctx, s.db, tech); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}

	resp := toTechnicianResponse(tech)
	return &resp, nil
}

func (s *Service) ListTechnicians(ctx context.Context, activeOnly bool) ([]domain.TechnicianResponse, error) {
	techs, err := s.repo.FindTechnicians(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.TechnicianResponse, 0, len(techs))
	for i := range techs {
		resp = append(resp, toTechnicianResponse(&techs[i]))
	}
	return resp, nil
}

func (s *Service) UpdateTechnician(ctx context.Context, req domain.UpdateTechnicianRequest) (*domain.TechnicianResponse, error) {
	techID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	tech, err := s.repo.FindTechnicianByID(ctx, s.db, techID)
	if err != nil {
		return nil, err
	}
	if tech == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		tech.Name = name
	}
	if req.Active != nil {
		tech.Active = *req.Active
	}

	tech.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateTechnician(ctx, s.db, tech); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}

	resp := toTechnicianResponse(tech)
	return &resp, nil
}

func parseID(value string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func toOrganizationResponse(org *domain.Organization) domain.OrganizationResponse {
	return domain.OrganizationResponse{
		ID:              strconv.FormatInt(org.ID, 10),
		Name:            org.Name,
		Slug:            org.Slug,
		QBOCustomerName: org.QBOCustomerName,
		InvoiceMemo:     org.InvoiceMemo,
		BillingEmail:    org.BillingEmail,
		ContactName:     org.ContactName,
		Phone:           org.Phone,
		Address:         org.Address,
		Active:          org.Active,
		Suspended:       org.Suspended,
		CreatedAt:       org.CreatedAt,
		UpdatedAt:       org.UpdatedAt,
	}
}

func toServiceResponse(svc *domain.Service) domain.ServiceResponse {
	return domain.ServiceResponse{
		ID:          strconv.FormatInt(svc.ID, 10),
		Name:        svc.Name,
		QBOItemName: svc.QBOItemName,
		RateCents:   svc.RateCents,
		Active:      svc.Active,
		CreatedAt:   svc.CreatedAt,
		UpdatedAt:   svc.UpdatedAt,
	}
}

func toFeeResponse(fee *domain.Fee) domain.FeeResponse {
	return domain.FeeResponse{
		ID:          strconv.FormatInt(fee.ID, 10),
		Label:       fee.Label,
		AmountCents: fee.AmountCents,
		Active:      fee.Active,
		CreatedAt:   fee.CreatedAt,
		UpdatedAt:   fee.UpdatedAt,
	}
}

func toTechnicianResponse(tech *domain.Technician) domain.TechnicianResponse {
	return domain.TechnicianResponse{
		ID:        strconv.FormatInt(tech.ID, 10),
		Name:      tech.Name,
		Active:    tech.Active,
		CreatedAt: tech.CreatedAt,
		UpdatedAt: tech.UpdatedAt,
	}
}
