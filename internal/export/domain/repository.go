package domain

import (
	"context"

	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, batch *ExportBatch) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*ExportBatch, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]ExportBatch, int64, error)
	Update(ctx context.Context, db *gorm.DB, batch *ExportBatch) error

	// FindLatestUploaded returns the newest batch that produced an
	// artifact, or nil when none exists.
	FindLatestUploaded(ctx context.Context, db *gorm.DB) (*ExportBatch, error)
}
