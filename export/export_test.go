package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/xuri/excelize/v2"
)

func sampleHistory() []payroll.MonthlyAccrual {
	return []payroll.MonthlyAccrual{
		{
			Month:         generic.Month{Year: 2024, Month: time.February},
			GrossSalary:   decimal.NewFromInt(1500),
			DeductionDays: 1,
			NetSalary:     decimal.RequireFromString("1446.43"),
		},
		{
			Month:       generic.Month{Year: 2024, Month: time.January},
			GrossSalary: decimal.NewFromInt(800),
			NetSalary:   decimal.NewFromInt(800),
		},
	}
}

func readRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestSalaryHistoryXLSX(t *testing.T) {
	emp := payroll.Employee{FullName: "Nimal", IndexNo: "7"}

	data, err := SalaryHistory(emp, sampleHistory(), FormatXLSX)
	require.NoError(t, err)

	rows := readRows(t, data, "Salary History")
	require.Len(t, rows, 3)
	assert.Equal(t, historyHeader, rows[0])
	assert.Equal(t, []string{"February 2024", "1500", "1", "1446.43"}, rows[1])
	assert.Equal(t, "January 2024", rows[2][0])
	assert.Equal(t, "SalaryHistory_7.xlsx", SalaryHistoryFilename(emp, FormatXLSX))
}

func TestSalaryHistoryPDF(t *testing.T) {
	data, err := SalaryHistory(payroll.Employee{FullName: "Nimal"}, sampleHistory(), FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestCompanyExpenses(t *testing.T) {
	report := []payroll.CompanyMonthlyExpense{
		{Month: generic.Month{Year: 2024, Month: time.March}, TotalExpense: decimal.NewFromInt(6200)},
	}

	data, err := CompanyExpenses(report, FormatXLSX)
	require.NoError(t, err)
	rows := readRows(t, data, "Company Expenses")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"March 2024", "6200"}, rows[1])

	data, err = CompanyExpenses(report, FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = CompanyExpenses(report, Format("csv"))
	assert.Error(t, err)
}

func TestRupees(t *testing.T) {
	assert.Equal(t, "Rs. 1446.43", Rupees(decimal.RequireFromString("1446.4285")))
	assert.Equal(t, "Rs. -500.00", Rupees(decimal.NewFromInt(-500)))
}

// =============================================================================
// ROSTER
// =============================================================================

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestRosterRoundTrip(t *testing.T) {
	employees := []payroll.Employee{
		{IndexNo: "1", FullName: "Nimal", JoiningDate: "15/01/2024", IDNumber: "9012V", WhatsappNumber: "077", Address: "Kandy", BankName: "BOC"},
		{IndexNo: "2", FullName: "Sunil", JoiningDate: "01/03/2024", IDNumber: "8811V", WhatsappNumber: "071", Address: "Galle"},
	}

	data, err := Roster(employees)
	require.NoError(t, err)

	got, err := ImportRosterBytes(data)
	require.NoError(t, err)
	assert.Equal(t, employees, got)
}

func TestImportRoster_ReorderedColumnsAndBlankRows(t *testing.T) {
	data := workbook(t,
		[]any{"address", "fullName", "indexNo", "idNumber", "joiningDate", "whatsappNumber", "notes"},
		[]any{"Kandy", "Nimal", "1", "9012V", "2024-01-15", "077", "ignored"},
		[]any{},
		[]any{"Galle", "Sunil", "2", "8811V", "1/3/2024", "071"},
	)

	got, err := ImportRosterBytes(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "15/01/2024", got[0].JoiningDate)
	assert.Equal(t, "1/3/2024", got[1].JoiningDate)
	assert.Equal(t, "Galle", got[1].Address)
}

func TestImportRoster_MissingHeaders(t *testing.T) {
	data := workbook(t,
		[]any{"indexNo", "fullName", "address"},
		[]any{"1", "Nimal", "Kandy"},
	)

	_, err := ImportRosterBytes(data)

	var mh *MissingHeadersError
	require.ErrorAs(t, err, &mh)
	assert.Equal(t, []string{"joiningDate", "idNumber", "whatsappNumber"}, mh.Missing)
	assert.True(t, generic.IsClientError(err))
}

func TestImportRoster_HeaderOnly(t *testing.T) {
	header := make([]any, len(RosterHeader))
	for i, h := range RosterHeader {
		header[i] = h
	}

	_, err := ImportRosterBytes(workbook(t, header))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestImportRoster_EmptySheet(t *testing.T) {
	_, err := ImportRosterBytes(workbook(t))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestImportRoster_NotAWorkbook(t *testing.T) {
	_, err := ImportRosterBytes([]byte("not a zip"))
	assert.Error(t, err)
}
