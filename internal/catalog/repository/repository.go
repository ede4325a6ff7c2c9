package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/internal/catalog/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func firstOrNil[T any](err error, value *T) (*T, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

func (r *repo) CreateOrganization(ctx context.Context, db *gorm.DB, org *domain.Organization) error {
	return db.WithContext(ctx).Create(org).Error
}

func (r *repo) FindOrganizationByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Organization, error) {
	var org domain.Organization
	err := db.WithContext(ctx).Where("id = ?", id).First(&org).Error
	return firstOrNil(err, &org)
}

func (r *repo) FindOrganizations(ctx context.Context, db *gorm.DB, filter domain.OrganizationFilter) ([]domain.Organization, error) {
	stmt := db.WithContext(ctx).Model(&domain.Organization{})
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if filter.Suspended != nil {
		stmt = stmt.Where("suspended = ?", *filter.Suspended)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var orgs []domain.Organization
	if err := stmt.Order("name ASC").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repo) CountOrganizations(ctx context.Context, db *gorm.DB, filter domain.OrganizationFilter) (int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Organization{})
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if filter.Suspended != nil {
		stmt = stmt.Where("suspended = ?", *filter.Suspended)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) FindOrganizationsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Organization, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orgs []domain.Organization
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repo) UpdateOrganization(ctx context.Context, db *gorm.DB, org *domain.Organization) error {
	if org == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Save(org).Error
}

func (r *repo) CreateService(ctx context.Context, db *gorm.DB, svc *domain.Service) error {
	return db.WithContext(ctx).Create(svc).Error
}

func (r *repo) FindServiceByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Service, error) {
	var svc domain.Service
	err := db.WithContext(ctx).Where("id = ?", id).First(&svc).Error
	return firstOrNil(err, &svc)
}

func (r *repo) FindServices(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Service, error) {
	stmt := db.WithContext(ctx).Model(&domain.Service{})
	if activeOnly {
		stmt = stmt.Where("active = ?", true)
	}
	var services []domain.Service
	if err := stmt.Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *repo) UpdateService(ctx context.Context, db *gorm.DB, svc *domain.Service) error {
	if svc == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Save(svc).Error
}

func (r *repo) CreateFee(ctx context.Context, db *gorm.DB, fee *domain.Fee) error {
	return db.WithContext(ctx).Create(fee).Error
}

func (r *repo) FindFeeByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Fee, error) {
	var fee domain.Fee
	err := db.WithContext(ctx).Where("id = ?", id).First(&fee).Error
	return firstOrNil(err, &fee)
}

func (r *repo) FindFees(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Fee, error) {
	stmt := db.WithContext(ctx).Model(&domain.Fee{})
	if activeOnly {
		stmt = stmt.Where("active = ?", true)
	}
	var fees []domain.Fee
	if err := stmt.Order("label ASC").Find(&fees).Error; err != nil {
		return nil, err
	}
	return fees, nil
}

func (r *repo) UpdateFee(ctx context.Context, db *gorm.DB, fee *domain.Fee) error {
	if fee == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Save(fee).Error
}

func (r *repo) CreateTechnician(ctx context.Context, db *gorm.DB, tech *domain.Technician) error {
	return db.WithContext(ctx).Create(tech).Error
}

func (r *repo) FindTechnicianByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Technician, error) {
	var tech domain.Technician
	err := db.WithContext(ctx).Where("id = ?", id).First(&tech).Error
	return firstOrNil(err, &tech)
}

func (r *repo) FindTechnicians(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Technician, error) {
	stmt := db.WithContext(ctx).Model(&domain.Technician{})
	if activeOnly {
		stmt = stmt.Where("active = ?", true)
	}
	var techs []domain.Technician
	if err := stmt.Order("name ASC").Find(&techs).Error; err != nil {
		return nil, err
	}
	return techs, nil
}

func (r *repo) UpdateTechnician(ctx context.Context, db *gorm.DB, tech *domain.Technician) error {
	if tech == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Save(tech).Error
}
