package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// ROSTER - employee spreadsheet export and bulk import
// =============================================================================

const rosterSheet = "Employees"

// RosterHeader is the column layout used for export and expected on import.
var RosterHeader = []string{
	"indexNo", "fullName", "joiningDate", "idNumber", "whatsappNumber",
	"address", "bankHolderName", "accountNumber", "bankName",
}

var requiredRosterHeaders = []string{
	"indexNo", "joiningDate", "idNumber", "fullName", "whatsappNumber", "address",
}

var (
	// ErrNoSheets is returned for a workbook without worksheets.
	ErrNoSheets = fmt.Errorf("workbook has no sheets: %w", generic.ErrValidation)

	// ErrNoHeader is returned when the first sheet has no header row.
	ErrNoHeader = fmt.Errorf("first sheet has no header row: %w", generic.ErrValidation)

	// ErrNoRows is returned when the headers are present but no data follows.
	ErrNoRows = fmt.Errorf("sheet has headers but no data rows: %w", generic.ErrValidation)
)

// MissingHeadersError lists required columns absent from an import.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return "missing required headers: " + strings.Join(e.Missing, ", ")
}

func (e *MissingHeadersError) Unwrap() error {
	return generic.ErrValidation
}

// Roster renders employees as an XLSX sheet in RosterHeader order.
func Roster(employees []payroll.Employee) ([]byte, error) {
	t := table{sheet: rosterSheet, header: RosterHeader}
	for _, e := range employees {
		t.rows = append(t.rows, []any{
			e.IndexNo, e.FullName, e.JoiningDate, e.IDNumber, e.WhatsappNumber,
			e.Address, e.BankHolderName, e.AccountNumber, e.BankName,
		})
	}
	return t.xlsx()
}

// ImportRoster reads employees from the first sheet of an XLSX workbook.
// Columns are matched by header name in any order; unknown columns are
// ignored and blank rows skipped. Returned employees have no ID.
func ImportRoster(r io.Reader) ([]payroll.Employee, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, ErrNoHeader
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		columns[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, h := range requiredRosterHeaders {
		if _, ok := columns[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingHeadersError{Missing: missing}
	}

	var employees []payroll.Employee
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		get := func(header string) string {
			i, ok := columns[header]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		employees = append(employees, payroll.Employee{
			IndexNo:        get("indexNo"),
			FullName:       get("fullName"),
			JoiningDate:    normalizeJoiningDate(get("joiningDate")),
			IDNumber:       get("idNumber"),
			WhatsappNumber: get("whatsappNumber"),
			Address:        get("address"),
			BankHolderName: get("bankHolderName"),
			AccountNumber:  get("accountNumber"),
			BankName:       get("bankName"),
		})
	}
	if len(employees) == 0 {
		return nil, ErrNoRows
	}
	return employees, nil
}

// ImportRosterBytes is ImportRoster over an in-memory file.
func ImportRosterBytes(data []byte) ([]payroll.Employee, error) {
	return ImportRoster(bytes.NewReader(data))
}

// normalizeJoiningDate rewrites spreadsheet-style ISO dates into the
// DD/MM/YYYY form the engine reads. Anything else is kept as entered.
func normalizeJoiningDate(s string) string {
	if tp, err := generic.ParseDate(s); err == nil {
		return payroll.FormatJoiningDate(tp)
	}
	return s
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
