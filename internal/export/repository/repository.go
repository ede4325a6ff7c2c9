package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/internal/export/domain"
	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, batch *domain.ExportBatch) error {
	return db.WithContext(ctx).Create(batch).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.ExportBatch, error) {
	var batch domain.ExportBatch
	err := db.WithContext(ctx).Where("id = ?", id).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]domain.ExportBatch, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.ExportBatch{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var batches []domain.ExportBatch
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&batches).Error
	if err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, batch *domain.ExportBatch) error {
	if batch == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Save(batch).Error
}

func (r *repo) FindLatestUploaded(ctx context.Context, db *gorm.DB) (*domain.ExportBatch, error) {
	var batch domain.ExportBatch
	err := db.WithContext(ctx).
		Where("status = ?", domain.StatusUploaded).
		Order("created_at DESC, id DESC").
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}
