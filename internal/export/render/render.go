// Package render turns invoice line items into the flat files the
// bookkeeper feeds into QuickBooks' invoice import.
package render

import "fmt"

// Row is one invoice line in the QBO import layout. Each service record
// produces a service row and, when a fee was collected, a fee row under
// the same invoice number.
type Row struct {
	InvoiceNo       string
	Customer        string
	InvoiceDate     string // MM/DD/YYYY
	DueDate         string // MM/DD/YYYY
	Terms           string
	Item            string
	ItemDescription string
	ItemQuantity    int
	ItemRate        int64 // cents
	ItemAmount      int64 // cents
	Memo            string

	// Audit columns, ignored by the QBO importer but kept for the
	// bookkeeper's reconciliation.
	Organization  string
	ServiceDate   string // YYYY-MM-DD
	Applicant     string
	BillingNumber string
	Technician    string
}

var headers = []string{
	"InvoiceNo",
	"Customer",
	"InvoiceDate",
	"DueDate",
	"Terms",
	"Item(Product/Service)",
	"ItemDescription",
	"ItemQuantity",
	"ItemRate",
	"ItemAmount",
	"Memo",
	"Organization",
	"ServiceDate",
	"Applicant",
	"BillingNumber",
	"Technician",
}

// Dollars renders cents as a plain two-decimal amount, the only money
// format the QBO importer accepts.
func Dollars(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func (r Row) strings() []string {
	return []string{
		r.InvoiceNo,
		r.Customer,
		r.InvoiceDate,
		r.DueDate,
		r.Terms,
		r.Item,
		r.ItemDescription,
		fmt.Sprintf("%d", r.ItemQuantity),
		Dollars(r.ItemRate),
		Dollars(r.ItemAmount),
		r.Memo,
		r.Organization,
		r.ServiceDate,
		r.Applicant,
		r.BillingNumber,
		r.Technician,
	}
}
