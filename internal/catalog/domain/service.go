package domain

import (
	"context"
	"errors"
	"time"
)

type CatalogService interface {
	CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error)
	ListOrganizations(ctx context.Context, req ListOrganizationsRequest) ([]OrganizationResponse, error)
	GetOrganization(ctx context.Context, id string) (*OrganizationResponse, error)
	UpdateOrganization(ctx context.Context, req UpdateOrganizationRequest) (*OrganizationResponse, error)

	CreateService(ctx context.Context, req CreateServiceRequest) (*ServiceResponse, error)
	ListServices(ctx context.Context, activeOnly bool) ([]ServiceResponse, error)
	UpdateService(ctx context.Context, req UpdateServiceRequest) (*ServiceResponse, error)

	CreateFee(ctx context.Context, req CreateFeeRequest) (*FeeResponse, error)
	ListFees(ctx context.Context, activeOnly bool) ([]FeeResponse, error)
	UpdateFee(ctx context.Context, req UpdateFeeRequest) (*FeeResponse, error)

	CreateTechnician(ctx context.Context, req CreateTechnicianRequest) (*TechnicianResponse, error)
	ListTechnicians(ctx context.Context, activeOnly bool) ([]TechnicianResponse, error)
	UpdateTechnician(ctx context.Context, req UpdateTechnicianRequest) (*TechnicianResponse, error)
}

type CreateOrganizationRequest struct {
	Name            string `json:"name"`
	QBOCustomerName string `json:"qbo_customer_name"`
	InvoiceMemo     string `json:"invoice_memo"`
	BillingEmail    string `json:"billing_email"`
	ContactName     string `json:"contact_name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
}

type ListOrganizationsRequest struct {
	Active    *bool  `form:"active"`
	Suspended *bool  `form:"suspended"`
	Query     string `form:"q"`
}

type UpdateOrganizationRequest struct {
	ID              string  `json:"-"`
	Name            *string `json:"name"`
	QBOCustomerName *string `json:"qbo_customer_name"`
	InvoiceMemo     *string `json:"invoice_memo"`
	BillingEmail    *string `json:"billing_email"`
	ContactName     *string `json:"contact_name"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	Active          *bool   `json:"active"`
	Suspended       *bool   `json:"suspended"`
}

type OrganizationResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	QBOCustomerName string    `json:"qbo_customer_name"`
	InvoiceMemo     string    `json:"invoice_memo"`
	BillingEmail    string    `json:"billing_email"`
	ContactName     string    `json:"contact_name"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	Active          bool      `json:"active"`
	Suspended       bool      `json:"suspended"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateServiceRequest struct {
	Name        string `json:"name"`
	QBOItemName string `json:"qbo_item_name"`
	RateCents   int64  `json:"rate_cents"`
}

type UpdateServiceRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name"`
	QBOItemName *string `json:"qbo_item_name"`
	RateCents   *int64  `json:"rate_cents"`
	Active      *bool   `json:"active"`
}

type ServiceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	QBOItemName string    `json:"qbo_item_name"`
	RateCents   int64     `json:"rate_cents"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateFeeRequest struct {
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
}

type UpdateFeeRequest struct {
	ID          string  `json:"-"`
	Label       *string `json:"label"`
	AmountCents *int64  `json:"amount_cents"`
	Active      *bool   `json:"active"`
}

type FeeResponse struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	AmountCents int64     `json:"amount_cents"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateTechnicianRequest struct {
	Name string `json:"name"`
}

type UpdateTechnicianRequest struct {
	ID     string  `json:"-"`
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type TechnicianResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidLabel  = errors.New("invalid_label")
	ErrInvalidRate   = errors.New("invalid_rate")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNameTaken     = errors.New("name_taken")
	ErrNotFound      = errors.New("not_found")
)
