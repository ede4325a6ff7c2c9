package domain

import (
	"context"

	"gorm.io/gorm"
)

type OrganizationFilter struct {
	Active    *bool
	Suspended *bool
	Query     string
}

type Repository interface {
	CreateOrganization(ctx context.Context, db *gorm.DB, org *Organization) error
	FindOrganizationByID(ctx context.Context, db *gorm.DB, id int64) (*Organization, error)
	FindOrganizations(ctx context.Context, db *gorm.DB, filter OrganizationFilter) ([]Organization, error)
	FindOrganizationsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Organization, error)
	CountOrganizations(ctx context.Context, db *gorm.DB, filter OrganizationFilter) (int64, error)
	UpdateOrganization(ctx context.Context, db *gorm.DB, org *Organization) error

	CreateService(ctx context.Context, db *gorm.DB, svc *Service) error
	FindServiceByID(ctx context.Context, db *gorm.DB, id int64) (*Service, error)
	FindServices(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Service, error)
	UpdateService(ctx context.Context, db *gorm.DB, svc *Service) error

	CreateFee(ctx context.Context, db *gorm.DB, fee *Fee) error
	FindFeeByID(ctx context.Context, db *gorm.DB, id int64) (*Fee, error)
	FindFees(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Fee, error)
	UpdateFee(ctx context.Context, db *gorm.DB, fee *Fee) error

	CreateTechnician(ctx context.Context, db *gorm.DB, tech *Technician) error
	FindTechnicianByID(ctx context.Context, db *gorm.DB, id int64) (*Technician, error)
	FindTechnicians(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Technician, error)
	UpdateTechnician(ctx context.Context, db *gorm.DB, tech *Technician) error
}
