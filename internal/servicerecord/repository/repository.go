package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/internal/servicerecord/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, record *domain.ServiceRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.ServiceRecord, error) {
	var record domain.ServiceRecord
	err := db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.ServiceRecord, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.ServiceRecord{})

	if filter.From != nil {
		stmt = stmt.Where("service_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("service_date < ?", *filter.To)
	}
	if filter.OrganizationID != 0 {
		stmt = stmt.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.Billed != nil {
		stmt = stmt.Where("billed = ?", *filter.Billed)
	}
	if filter.CreatedBy != 0 {
		stmt = stmt.Where("created_by = ?", filter.CreatedBy)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []domain.ServiceRecord
	err := stmt.
		Order("service_date DESC, id DESC").
		Offset(filter.Page.Offset()).
		Limit(filter.Page.PageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, record *domain.ServiceRecord) error {
	if record == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Save(record).Error
}

func (r *repo) FindUnbilledInRange(ctx context.Context, db *gorm.DB, start, end time.Time, orgIDs []int64) ([]domain.ServiceRecord, error) {
	stmt := db.WithContext(ctx).
		Where("billed = ?", false).
		Where("service_date >= ? AND service_date < ?", start, end)
	if len(orgIDs) > 0 {
		stmt = stmt.Where("organization_id IN ?", orgIDs)
	}

	var records []domain.ServiceRecord
	err := stmt.Order("organization_name ASC, service_date ASC, id ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) MarkBilled(ctx context.Context, db *gorm.DB, ids []int64, batchID int64, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(&domain.ServiceRecord{}).
		Where("id IN ? AND billed = ?", ids, false).
		Updates(map[string]any{
			"billed":          true,
			"billed_at":       at,
			"export_batch_id": batchID,
			"updated_at":      at,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) FindByBatch(ctx context.Context, db *gorm.DB, batchID int64) ([]domain.ServiceRecord, error) {
	var records []domain.ServiceRecord
	err := db.WithContext(ctx).
		Where("export_batch_id = ?", batchID).
		Order("organization_name ASC, service_date ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) CountUnbilled(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ServiceRecord{}).
		Where("billed = ?", false).
		Count(&count).Error
	return count, err
}

func (r *repo) CountUnbilledBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ServiceRecord{}).
		Where("billed = ? AND service_date < ?", false, cutoff).
		Count(&count).Error
	return count, err
}

func (r *repo) CountCreatedBetween(ctx context.Context, db *gorm.DB, start, end time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ServiceRecord{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}
