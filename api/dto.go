/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the payroll domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Amounts leave the API as strings with two decimals ("1446.43") for
  display. Accrual rows also carry the unrounded engine value as a JSON
  number (*_value fields). Amounts arrive as JSON numbers or numeric
  strings.

DATES:
  Calendar dates are "YYYY-MM-DD". Joining dates stay "DD/MM/YYYY" exactly
  as entered. Months are {"key": "2024-01", "label": "January 2024"}.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee profile in API responses.
type EmployeeDTO struct {
	ID             string `json:"id"`
	IndexNo        string `json:"index_no"`
	FullName       string `json:"full_name"`
	JoiningDate    string `json:"joining_date"`
	JoiningDateOK  bool   `json:"joining_date_valid"`
	IDNumber       string `json:"id_number"`
	WhatsappNumber string `json:"whatsapp_number"`
	Address        string `json:"address"`
	BankHolderName string `json:"bank_holder_name,omitempty"`
	AccountNumber  string `json:"account_number,omitempty"`
	BankName       string `json:"bank_name,omitempty"`
}

// EmployeeRequest is the body of create and update calls.
type EmployeeRequest struct {
	ID             string `json:"id,omitempty"`
	IndexNo        string `json:"index_no"`
	FullName       string `json:"full_name"`
	JoiningDate    string `json:"joining_date"`
	IDNumber       string `json:"id_number"`
	WhatsappNumber string `json:"whatsapp_number"`
	Address        string `json:"address"`
	BankHolderName string `json:"bank_holder_name"`
	AccountNumber  string `json:"account_number"`
	BankName       string `json:"bank_name"`
}

// EmployeeDetailDTO is a profile with its attendance log.
type EmployeeDetailDTO struct {
	EmployeeDTO
	CurrentSalary string          `json:"current_salary"`
	Attendance    []AttendanceDTO `json:"attendance"`
}

// AttendanceDTO is one recorded day.
type AttendanceDTO struct {
	Date    string `json:"date"`
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// AttendanceRequest is the body of PUT /employees/{id}/attendance/{date}.
type AttendanceRequest struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// AttendanceDayRowDTO is one employee on a day sheet.
type AttendanceDayRowDTO struct {
	EmployeeID string `json:"employee_id"`
	IndexNo    string `json:"index_no"`
	FullName   string `json:"full_name"`
	Status     string `json:"status"`
	Details    string `json:"details,omitempty"`
	Recorded   bool   `json:"recorded"`
}

// AttendanceDayResponse is every employee's entry for one date.
type AttendanceDayResponse struct {
	Date string                `json:"date"`
	Rows []AttendanceDayRowDTO `json:"rows"`
}

// AttendanceDayEntry is one employee's mark in AttendanceDayRequest.
type AttendanceDayEntry struct {
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status"`
	Details    string `json:"details"`
}

// AttendanceDayRequest is the body of PUT /attendance/{date}. Employees not
// listed are saved as Full Completed.
type AttendanceDayRequest struct {
	Entries []AttendanceDayEntry `json:"entries"`
}

// =============================================================================
// SALARY
// =============================================================================

// SalaryChangeDTO is one company-wide rate.
type SalaryChangeDTO struct {
	ID            string `json:"id"`
	EffectiveDate string `json:"effective_date"`
	Amount        string `json:"amount"`
}

// SalaryChangesResponse lists rates newest-effective first.
type SalaryChangesResponse struct {
	CurrentSalary string            `json:"current_salary"`
	Changes       []SalaryChangeDTO `json:"changes"`
}

// SalaryChangeRequest is the body of POST /salary-changes.
type SalaryChangeRequest struct {
	Amount        json.Number `json:"amount"`
	EffectiveDate string      `json:"effective_date"`
}

// MonthDTO identifies a calendar month.
type MonthDTO struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// MonthlyAccrualDTO is one row of an employee's salary history.
type MonthlyAccrualDTO struct {
	Month            MonthDTO    `json:"month"`
	GrossSalary      string      `json:"gross_salary"`
	GrossSalaryValue json.Number `json:"gross_salary_value"`
	DeductionDays    int         `json:"deduction_days"`
	NetSalary        string      `json:"net_salary"`
	NetSalaryValue   json.Number `json:"net_salary_value"`
}

// SalaryHistoryResponse is an employee's full history.
type SalaryHistoryResponse struct {
	EmployeeID    string              `json:"employee_id"`
	FullName      string              `json:"full_name"`
	CurrentSalary string              `json:"current_salary"`
	History       []MonthlyAccrualDTO `json:"history"`
}

// CompanyExpenseDTO is one month of the company report.
type CompanyExpenseDTO struct {
	Month             MonthDTO    `json:"month"`
	TotalExpense      string      `json:"total_expense"`
	TotalExpenseValue json.Number `json:"total_expense_value"`
}

// ReportRunDTO is one scheduled report refresh.
type ReportRunDTO struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Months      int     `json:"months"`
	LatestTotal string  `json:"latest_total"`
	Error       string  `json:"error,omitempty"`
	StartedAt   string  `json:"started_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

// ReportRunsResponse lists recent runs. NextRunAt is set while the
// scheduler is running.
type ReportRunsResponse struct {
	Runs      []ReportRunDTO `json:"runs"`
	NextRunAt *string        `json:"next_run_at,omitempty"`
}

// =============================================================================
// IMPORTS / SCENARIOS / ERRORS
// =============================================================================

// ImportResponse summarizes a bulk import.
type ImportResponse struct {
	SalaryChanges int `json:"salary_changes"`
	Employees     int `json:"employees"`
	Attendance    int `json:"attendance"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the body of POST /scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// exact renders d unrounded as a JSON number.
func exact(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func toMonthDTO(m generic.Month) MonthDTO {
	return MonthDTO{Key: m.Key(), Label: m.String()}
}

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	_, ok := e.JoinedOn()
	return EmployeeDTO{
		ID:             e.ID,
		IndexNo:        e.IndexNo,
		FullName:       e.FullName,
		JoiningDate:    e.JoiningDate,
		JoiningDateOK:  ok,
		IDNumber:       e.IDNumber,
		WhatsappNumber: e.WhatsappNumber,
		Address:        e.Address,
		BankHolderName: e.BankHolderName,
		AccountNumber:  e.AccountNumber,
		BankName:       e.BankName,
	}
}

func (req EmployeeRequest) toEmployee(id string) payroll.Employee {
	return payroll.Employee{
		ID:             id,
		IndexNo:        req.IndexNo,
		FullName:       req.FullName,
		JoiningDate:    req.JoiningDate,
		IDNumber:       req.IDNumber,
		WhatsappNumber: req.WhatsappNumber,
		Address:        req.Address,
		BankHolderName: req.BankHolderName,
		AccountNumber:  req.AccountNumber,
		BankName:       req.BankName,
	}
}

func toAttendanceDTOs(e payroll.Employee) []AttendanceDTO {
	log := payroll.AttendanceLog(e)
	dtos := make([]AttendanceDTO, len(log))
	for i, entry := range log {
		dtos[i] = AttendanceDTO{
			Date:    entry.Date.String(),
			Status:  string(entry.Status),
			Details: entry.Details,
		}
	}
	return dtos
}

func toSalaryChangeDTO(c payroll.SalaryChange) SalaryChangeDTO {
	return SalaryChangeDTO{
		ID:            c.ID,
		EffectiveDate: c.EffectiveDate.String(),
		Amount:        money(c.Amount),
	}
}

func toHistoryDTOs(history []payroll.MonthlyAccrual) []MonthlyAccrualDTO {
	dtos := make([]MonthlyAccrualDTO, len(history))
	for i, acc := range history {
		dtos[i] = MonthlyAccrualDTO{
			Month:            toMonthDTO(acc.Month),
			GrossSalary:      money(acc.GrossSalary),
			GrossSalaryValue: exact(acc.GrossSalary),
			DeductionDays:    acc.DeductionDays,
			NetSalary:        money(acc.NetSalary),
			NetSalaryValue:   exact(acc.NetSalary),
		}
	}
	return dtos
}

func toCompanyDTOs(report []payroll.CompanyMonthlyExpense) []CompanyExpenseDTO {
	dtos := make([]CompanyExpenseDTO, len(report))
	for i, row := range report {
		dtos[i] = CompanyExpenseDTO{
			Month:             toMonthDTO(row.Month),
			TotalExpense:      money(row.TotalExpense),
			TotalExpenseValue: exact(row.TotalExpense),
		}
	}
	return dtos
}

func toDayRowDTOs(rows []payroll.DayRow) []AttendanceDayRowDTO {
	dtos := make([]AttendanceDayRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = AttendanceDayRowDTO{
			EmployeeID: row.Employee.ID,
			IndexNo:    row.Employee.IndexNo,
			FullName:   row.Employee.FullName,
			Status:     string(row.Entry.Status),
			Details:    row.Entry.Details,
			Recorded:   row.Recorded,
		}
	}
	return dtos
}

func toReportRunDTO(r sqlite.ReportRun) ReportRunDTO {
	dto := ReportRunDTO{
		ID:          r.ID,
		Status:      r.Status,
		Months:      r.Months,
		LatestTotal: money(r.LatestTotal),
		Error:       r.Error,
		StartedAt:   r.StartedAt.Format(timeLayout),
	}
	if r.CompletedAt != nil {
		s := r.CompletedAt.Format(timeLayout)
		dto.CompletedAt = &s
	}
	return dto
}
