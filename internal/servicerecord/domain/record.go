// Package domain defines service records, the unit of billable work.
// Catalog values are snapshotted onto the record at creation time so a
// later rate or rename never changes what an agency is invoiced.
package domain

import "time"

type ServiceRecord struct {
	ID            int64  `json:"id" gorm:"primaryKey"`
	ServiceDate   time.Time `json:"service_date" gorm:"not null;index:idx_service_records_billed_date,priority:2"`
	ApplicantName string `json:"applicant_name" gorm:"type:text;not null"`
	BillingNumber string `json:"billing_number" gorm:"type:text;not null"`

	OrganizationID   int64  `json:"organization_id" gorm:"not null;index"`
	OrganizationName string `json:"organization_name" gorm:"type:text;not null;default:''"`
	QBOCustomerName  string `json:"qbo_customer_name" gorm:"column:qbo_customer_name;type:text;not null;default:''"`
	InvoiceMemo      string `json:"invoice_memo" gorm:"type:text;not null;default:''"`

	ServiceID   int64  `json:"service_id" gorm:"not null"`
	ServiceName string `json:"service_name" gorm:"type:text;not null;default:''"`
	QBOItemName string `json:"qbo_item_name" gorm:"column:qbo_item_name;type:text;not null;default:''"`
	RateCents   int64  `json:"rate_cents" gorm:"not null;default:0"`

	FeeID          *int64 `json:"fee_id,omitempty"`
	FeeLabel       string `json:"fee_label" gorm:"type:text;not null;default:''"`
	FeeAmountCents int64  `json:"fee_amount_cents" gorm:"not null;default:0"`

	TechnicianID   *int64 `json:"technician_id,omitempty"`
	TechnicianName string `json:"technician_name" gorm:"type:text;not null;default:''"`

	Quantity int    `json:"quantity" gorm:"not null;default:1"`
	Notes    string `json:"notes" gorm:"type:text;not null;default:''"`

	Billed        bool       `json:"billed" gorm:"not null;default:false;index:idx_service_records_billed_date,priority:1"`
	BilledAt      *time.Time `json:"billed_at,omitempty"`
	ExportBatchID *int64     `json:"export_batch_id,omitempty" gorm:"index"`

	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ServiceRecord) TableName() string { return "service_records" }

// ServiceAmountCents is the service line amount.
func (r ServiceRecord) ServiceAmountCents() int64 {
	return r.RateCents * int64(r.Quantity)
}

// FeeTotalCents is the fee line amount, zero when no fee was collected.
func (r ServiceRecord) FeeTotalCents() int64 {
	return r.FeeAmountCents * int64(r.Quantity)
}

// TotalCents is the amount the record contributes to an invoice.
func (r ServiceRecord) TotalCents() int64 {
	return r.ServiceAmountCents() + r.FeeTotalCents()
}
