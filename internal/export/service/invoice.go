package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	exportdomain "github.com/smallbiznis/livescan/internal/export/domain"
	"github.com/smallbiznis/livescan/internal/export/render"
	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
)

const (
	// Fee lines always bill under one fixed product so QuickBooks maps
	// them to a single income account.
	feeItemName = "DOJ/FBI Fee"

	paymentTerms = "Net 14"
	dueDays      = 14

	invoiceDateLayout = "01/02/2006"
	serviceDateLayout = "2006-01-02"
)

// invoiceNumber derives the per-organization invoice number for a
// batch. The batch fragment keeps numbers unique across runs, the org
// fragment keeps them unique within a run, and the derivation is pure
// so re-reading a batch always reproduces the same numbers.
func invoiceNumber(batchID, orgID int64) string {
	batchFragment := batchID % 1_000_000
	orgFragment := strings.ToUpper(strconv.FormatInt(orgID, 36))
	return fmt.Sprintf("INV-%06d-%s", batchFragment, orgFragment)
}

// buildRows expands records into invoice line items: one service line
// per record, plus a fee line when a fee was collected. Records arrive
// ordered by organization then service date, so lines sharing an
// invoice number stay contiguous in the output.
func buildRows(records []recorddomain.ServiceRecord, batch *exportdomain.ExportBatch, invoiceDate time.Time) []render.Row {
	invoiceDateStr := invoiceDate.Format(invoiceDateLayout)
	dueDateStr := invoiceDate.AddDate(0, 0, dueDays).Format(invoiceDateLayout)

	rows := make([]render.Row, 0, len(records))
	for i := range records {
		record := &records[i]
		base := render.Row{
			InvoiceNo:   invoiceNumber(batch.ID, record.OrganizationID),
			Customer:    record.QBOCustomerName,
			InvoiceDate: invoiceDateStr,
			DueDate:     dueDateStr,
			Terms:       paymentTerms,
			Memo:        record.InvoiceMemo,

			Organization:  record.OrganizationName,
			ServiceDate:   record.ServiceDate.Format(serviceDateLayout),
			Applicant:     record.ApplicantName,
			BillingNumber: record.BillingNumber,
			Technician:    record.TechnicianName,
		}

		serviceRow := base
		serviceRow.Item = record.QBOItemName
		serviceRow.ItemDescription = fmt.Sprintf("%s - %s (%s)", record.ServiceName, record.ApplicantName, record.BillingNumber)
		serviceRow.ItemQuantity = record.Quantity
		serviceRow.ItemRate = record.RateCents
		serviceRow.ItemAmount = record.ServiceAmountCents()
		rows = append(rows, serviceRow)

		if record.FeeAmountCents > 0 {
			feeRow := base
			feeRow.Item = feeItemName
			feeRow.ItemDescription = fmt.Sprintf("%s - %s (%s)", record.FeeLabel, record.ApplicantName, record.BillingNumber)
			feeRow.ItemQuantity = record.Quantity
			feeRow.ItemRate = record.FeeAmountCents
			feeRow.ItemAmount = record.FeeTotalCents()
			rows = append(rows, feeRow)
		}
	}
	return rows
}

func exportFileName(start, end time.Time, format string) string {
	return fmt.Sprintf("LiveScan_HouseAccounts_%s_to_%s.%s",
		start.Format(serviceDateLayout),
		end.Format(serviceDateLayout),
		format,
	)
}
