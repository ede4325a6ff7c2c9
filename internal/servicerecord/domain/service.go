package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

type RecordService interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, *pagination.PageInfo, error)
	Get(ctx context.Context, actor Actor, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
}

// Actor identifies the signed-in user a request runs as. Staff only see
// records they entered; admins see everything.
type Actor struct {
	ID    int64
	Admin bool
}

type CreateRequest struct {
	Actor Actor `json:"-"`

	ServiceDate    string `json:"service_date"` // YYYY-MM-DD
	ApplicantName  string `json:"applicant_name"`
	BillingNumber  string `json:"billing_number"`
	OrganizationID string `json:"organization_id"`
	ServiceID      string `json:"service_id"`
	FeeID          string `json:"fee_id"`
	TechnicianID   string `json:"technician_id"`
	Quantity       int    `json:"quantity"` // 0 defaults to 1
	Notes          string `json:"notes"`
}

type ListRequest struct {
	Actor Actor `json:"-"`

	From           string `form:"from"` // YYYY-MM-DD inclusive
	To             string `form:"to"`   // YYYY-MM-DD inclusive
	OrganizationID string `form:"organization_id"`
	Billed         *bool  `form:"billed"`
	Page           pagination.Pagination
}

type UpdateRequest struct {
	Actor Actor  `json:"-"`
	ID    string `json:"-"`

	ServiceDate    *string `json:"service_date"`
	ApplicantName  *string `json:"applicant_name"`
	BillingNumber  *string `json:"billing_number"`
	OrganizationID *string `json:"organization_id"`
	ServiceID      *string `json:"service_id"`
	FeeID          *string `json:"fee_id"` // empty string clears the fee
	TechnicianID   *string `json:"technician_id"`
	Quantity       *int    `json:"quantity"`
	Notes          *string `json:"notes"`
}

type Response struct {
	ID            string    `json:"id"`
	ServiceDate   time.Time `json:"service_date"`
	ApplicantName string    `json:"applicant_name"`
	BillingNumber string    `json:"billing_number"`

	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	InvoiceMemo      string `json:"invoice_memo"`

	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	RateCents   int64  `json:"rate_cents"`

	FeeID          string `json:"fee_id,omitempty"`
	FeeLabel       string `json:"fee_label,omitempty"`
	FeeAmountCents int64  `json:"fee_amount_cents"`

	TechnicianID   string `json:"technician_id,omitempty"`
	TechnicianName string `json:"technician_name,omitempty"`

	Quantity   int    `json:"quantity"`
	TotalCents int64  `json:"total_cents"`
	Notes      string `json:"notes,omitempty"`

	Billed        bool       `json:"billed"`
	BilledAt      *time.Time `json:"billed_at,omitempty"`
	ExportBatchID string     `json:"export_batch_id,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidApplicant     = errors.New("invalid_applicant_name")
	ErrInvalidBillingNumber = errors.New("invalid_billing_number")
	ErrInvalidServiceDate   = errors.New("invalid_service_date")
	ErrInvalidOrganization  = errors.New("invalid_organization")
	ErrOrganizationInactive = errors.New("organization_inactive")
	ErrInvalidService       = errors.New("invalid_service")
	ErrInvalidFee           = errors.New("invalid_fee")
	ErrInvalidTechnician    = errors.New("invalid_technician")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidID            = errors.New("invalid_id")
	ErrRecordBilled         = errors.New("record_billed")
	ErrNotFound             = errors.New("not_found")
	ErrForbidden            = errors.New("forbidden")
)
