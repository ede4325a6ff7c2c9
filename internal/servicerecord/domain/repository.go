package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

type ListFilter struct {
	From           *time.Time
	To             *time.Time
	OrganizationID int64
	Billed         *bool
	CreatedBy      int64 // 0 means any creator
	Page           pagination.Pagination
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, record *ServiceRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*ServiceRecord, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]ServiceRecord, int64, error)
	Update(ctx context.Context, db *gorm.DB, record *ServiceRecord) error

	// FindUnbilledInRange returns unbilled records whose service date falls
	// in [start, end), ordered by organization name then service date.
	FindUnbilledInRange(ctx context.Context, db *gorm.DB, start, end time.Time, orgIDs []int64) ([]ServiceRecord, error)

	// MarkBilled stamps the given records billed, guarded by billed = false
	// so a concurrent export can never claim a record twice. It returns the
	// number of rows actually claimed.
	MarkBilled(ctx context.Context, db *gorm.DB, ids []int64, batchID int64, at time.Time) (int64, error)

	FindByBatch(ctx context.Context, db *gorm.DB, batchID int64) ([]ServiceRecord, error)

	CountUnbilled(ctx context.Context, db *gorm.DB) (int64, error)
	CountUnbilledBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
	CountCreatedBetween(ctx context.Context, db *gorm.DB, start, end time.Time) (int64, error)
}
