// Package domain defines the billable catalog: the agencies that are
// invoiced and the services, fees and technicians that appear on
// service records.
package domain

import "time"

type Organization struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Slug            string    `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	QBOCustomerName string    `json:"qbo_customer_name" gorm:"column:qbo_customer_name;type:text;not null;default:''"`
	InvoiceMemo     string    `json:"invoice_memo" gorm:"type:text;not null;default:''"`
	BillingEmail    string    `json:"billing_email" gorm:"type:text;not null;default:''"`
	ContactName     string    `json:"contact_name" gorm:"type:text;not null;default:''"`
	Phone           string    `json:"phone" gorm:"type:text;not null;default:''"`
	Address         string    `json:"address" gorm:"type:text;not null;default:''"`
	Active          bool      `json:"active" gorm:"not null;default:true"`
	Suspended       bool      `json:"suspended" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Organization) TableName() string { return "organizations" }

// Billable returns whether new exports may include this organization.
func (o Organization) Billable() bool {
	return o.Active && !o.Suspended
}

type Service struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:text;not null;uniqueIndex"`
	QBOItemName string    `json:"qbo_item_name" gorm:"column:qbo_item_name;type:text;not null;default:''"`
	RateCents   int64     `json:"rate_cents" gorm:"not null;default:0"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Service) TableName() string { return "services" }

type Fee struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Label       string    `json:"label" gorm:"type:text;not null;uniqueIndex"`
	AmountCents int64     `json:"amount_cents" gorm:"not null;default:0"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Fee) TableName() string { return "fees" }

type Technician struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Technician) TableName() string { return "technicians" }
