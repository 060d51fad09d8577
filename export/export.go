/*
Package export renders payroll results as spreadsheets and PDFs and reads
employee rosters back from spreadsheets.

PURPOSE:
  The engine produces values; people want files. Every renderer here takes
  already-computed results (MonthlyAccrual, CompanyMonthlyExpense) and never
  calls the engine itself.

FORMATS:
  - XLSX via excelize: one sheet per document, a header row, numeric cells
  - PDF via gofpdf: a title line and a bordered table, amounts as "Rs. 0.00"

SEE ALSO:
  - history.go: per-employee salary history
  - company.go: company monthly expenses
  - roster.go: employee roster export and import
*/
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "xlsx" or "pdf" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename returns base with the format's extension.
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Rupees formats an amount for display.
func Rupees(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(2)
}

// cellAmount is the value written into numeric spreadsheet cells.
func cellAmount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// =============================================================================
// TABLE RENDERING
// =============================================================================

// table is the shared shape of every exported document.
type table struct {
	title  string
	sheet  string
	header []string
	widths []float64 // PDF column widths in mm
	rows   [][]any
}

func (t table) xlsx() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", t.sheet); err != nil {
		return nil, err
	}
	for col, h := range t.header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(t.sheet, cell, h)
	}
	for i, row := range t.rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(t.sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t table) pdf() ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, t.title)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	for i, h := range t.header {
		pdf.CellFormat(t.widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range t.rows {
		for i, v := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(t.widths[i], 6, pdfText(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t table) render(format Format) ([]byte, error) {
	switch format {
	case FormatPDF:
		return t.pdf()
	case FormatXLSX:
		return t.xlsx()
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func pdfText(v any) string {
	switch x := v.(type) {
	case float64:
		return Rupees(decimal.NewFromFloat(x))
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
