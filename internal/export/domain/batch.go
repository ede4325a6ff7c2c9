// Package domain defines export batches, the unit of billing. A batch
// is created before any record is stamped billed so an operator can
// always trace a billed record back to the run that claimed it.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Batch lifecycle. A batch is pending while records are being claimed,
// committed once they are stamped, uploaded once the artifact landed in
// object storage, and failed when the run aborted after creation.
const (
	StatusPending   = "pending"
	StatusCommitted = "committed"
	StatusUploaded  = "uploaded"
	StatusFailed    = "failed"
)

type ExportBatch struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	RangeStart time.Time `json:"range_start" gorm:"not null"`
	RangeEnd   time.Time `json:"range_end" gorm:"not null"`
	Format     string    `json:"format" gorm:"type:text;not null"`
	Status     string    `json:"status" gorm:"type:text;not null;default:'pending'"`

	OrganizationIDs datatypes.JSONSlice[string] `json:"organization_ids" gorm:"type:jsonb"`

	RecordCount int    `json:"record_count" gorm:"not null;default:0"`
	ObjectKey   string `json:"object_key" gorm:"type:text;not null;default:''"`
	FileName    string `json:"file_name" gorm:"type:text;not null;default:''"`
	Error       string `json:"error" gorm:"type:text;not null;default:''"`

	CreatedBy      int64  `json:"created_by"`
	CreatedByEmail string `json:"created_by_email" gorm:"type:text;not null;default:''"`


	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ExportBatch) TableName() string { return "export_batches" }
