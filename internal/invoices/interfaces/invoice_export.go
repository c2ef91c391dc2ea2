package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	invoices "parking-core/internal/invoices/domain"
)

const timeLayout = time.RFC3339

func sourceOf(detail invoices.Detail) (kind, street, instant string) {
	switch {
	case detail.Session != nil:
		end := ""
		if detail.Session.EndAt != nil {
			end = detail.Session.EndAt.Format(timeLayout)
		}
		return "session", detail.Session.Street,
			detail.Session.StartAt.Format(timeLayout) + " / " + end
	case detail.Observation != nil:
		return "observation", detail.Observation.Street,
			detail.Observation.ObservedAt.Format(timeLayout)
	default:
		return "unknown", "", ""
	}
}

func amountEuros(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// BuildInvoicesCSV renders a license's invoices as CSV.
func BuildInvoicesCSV(license string, details []invoices.Detail) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{"invoice_id", "license", "source", "street", "period", "issued_at", "amount_eur", "paid"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, detail := range details {
		kind, street, period := sourceOf(detail)
		record := []string{
			detail.Invoice.ID,
			license,
			kind,
			street,
			period,
			detail.Invoice.IssuedAt.Format(timeLayout),
			amountEuros(detail.Invoice.AmountCents),
			strconv.FormatBool(detail.Invoice.Paid),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildInvoicesPDF renders a minimal PDF listing a license's invoices.
func BuildInvoicesPDF(license string, details []invoices.Detail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Parking Invoices")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("License: %s", license))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Invoices: %d", len(details)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Issued", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Source", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Street", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Amount (EUR)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Paid", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, detail := range details {
		kind, street, _ := sourceOf(detail)
		pdf.CellFormat(45, 6, detail.Invoice.IssuedAt.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, kind, "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, street, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, amountEuros(detail.Invoice.AmountCents), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, strconv.FormatBool(detail.Invoice.Paid), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildInvoicesXLSX renders a minimal XLSX listing a license's invoices.
func BuildInvoicesXLSX(license string, details []invoices.Detail) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "invoices"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "License")
	_ = f.SetCellValue(sheet, "B1", license)

	_ = f.SetCellValue(sheet, "A3", "Invoice")
	_ = f.SetCellValue(sheet, "B3", "Issued")
	_ = f.SetCellValue(sheet, "C3", "Source")
	_ = f.SetCellValue(sheet, "D3", "Street")
	_ = f.SetCellValue(sheet, "E3", "Amount (EUR)")
	_ = f.SetCellValue(sheet, "F3", "Paid")
	for i, detail := range details {
		row := i + 4
		kind, street, _ := sourceOf(detail)
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), detail.Invoice.ID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), detail.Invoice.IssuedAt.Format(timeLayout))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), kind)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), street)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), amountEuros(detail.Invoice.AmountCents))
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), detail.Invoice.Paid)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
