package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

type ExportService interface {
	// Run selects every unbilled record in the range, stamps it billed
	// under a fresh batch and renders the invoice file.
	Run(ctx context.Context, req RunRequest) (*RunResult, error)

	History(ctx context.Context, page pagination.Pagination) ([]BatchResponse, *pagination.PageInfo, error)
	Get(ctx context.Context, id string) (*BatchResponse, error)

	// DownloadURL returns a short-lived link to a batch artifact.
	DownloadURL(ctx context.Context, id string) (string, error)
}

type RunRequest struct {
	ActorID    int64  `json:"-"`
	ActorEmail string `json:"-"`

	StartDate string `json:"startDate"` // YYYY-MM-DD inclusive
	EndDate   string `json:"endDate"`   // YYYY-MM-DD inclusive
	Format    string `json:"format"`

	// SelectAll exports every organization; otherwise OrganizationIDs
	// narrows the run.
	SelectAll       bool     `json:"selectAll"`
	OrganizationIDs []string `json:"organizationIds"`
}

type RunResult struct {
	Batch       BatchResponse `json:"batch"`
	FileName    string        `json:"file_name"`
	ContentType string        `json:"-"`
	Data        []byte        `json:"-"`
}

type BatchResponse struct {
	ID              string     `json:"id"`
	RangeStart      time.Time  `json:"range_start"`
	RangeEnd        time.Time  `json:"range_end"`
	Format          string     `json:"format"`
	Status          string     `json:"status"`
	OrganizationIDs []string   `json:"organization_ids,omitempty"`
	RecordCount     int        `json:"record_count"`
	FileName        string     `json:"file_name,omitempty"`
	Error           string     `json:"error,omitempty"`
	CreatedBy       string     `json:"created_by"`
	CreatedByEmail  string     `json:"created_by_email,omitempty"`
	UploadedAt      *time.Time `json:"uploaded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

var (
	ErrInvalidDateRange    = errors.New("invalid_date_range")
	ErrInvalidFormat       = errors.New("invalid_format")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrEmptyOrganizations  = errors.New("empty_organizations")
	ErrNoRecords           = errors.New("no_unbilled_records")
	ErrInvalidID           = errors.New("invalid_id")
	ErrBatchNotFound       = errors.New("batch_not_found")
	ErrFileNotReady        = errors.New("file_not_ready")
)
