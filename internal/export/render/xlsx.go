package render

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Invoices"
)

func XLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []any{
			row.InvoiceNo,
			row.Customer,
			row.InvoiceDate,
			row.DueDate,
			row.Terms,
			row.Item,
			row.ItemDescription,
			row.ItemQuantity,
			centsToFloat(row.ItemRate),
			centsToFloat(row.ItemAmount),
			row.Memo,
			row.Organization,
			row.ServiceDate,
			row.Applicant,
			row.BillingNumber,
			row.Technician,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func centsToFloat(cents int64) float64 {
	return float64(cents) / 100
}
