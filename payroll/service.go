package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// SERVICE - store-backed entry points for the HTTP layer
// =============================================================================

// Service wires a Store to the engine. Now and Location decide "today";
// both are fields so tests can pin them.
type Service struct {
	Store    Store
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

func NewService(store Store, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Store: store, Location: loc, Now: time.Now, Logger: logger}
}

// Today is the reference date for accrual runs.
func (s *Service) Today() generic.TimePoint {
	return generic.DateOf(s.Now().In(s.Location))
}

// EmployeeReport is one employee with their salary history.
type EmployeeReport struct {
	Employee      Employee
	CurrentSalary decimal.Decimal
	History       []MonthlyAccrual
}

// EmployeeHistory loads a consistent snapshot and computes one history.
func (s *Service) EmployeeHistory(ctx context.Context, id string) (EmployeeReport, error) {
	emp, err := s.Store.GetEmployee(ctx, id)
	if err != nil {
		return EmployeeReport{}, err
	}
	changes, err := s.Store.SalaryChanges(ctx)
	if err != nil {
		return EmployeeReport{}, err
	}
	series := NewSalarySeries(changes)
	if _, ok := emp.JoinedOn(); !ok {
		s.Logger.Debug("employee excluded from accrual", "employee_id", emp.ID, "joining_date", emp.JoiningDate)
	}
	return EmployeeReport{
		Employee:      emp,
		CurrentSalary: CurrentSalary(series),
		History:       ComputeHistory(emp, series, s.Today()),
	}, nil
}

// CompanyReport computes the company-wide monthly expense report.
func (s *Service) CompanyReport(ctx context.Context) ([]CompanyMonthlyExpense, error) {
	report, _, err := s.CompanyReportWithExclusions(ctx)
	return report, err
}

// CompanyReportWithExclusions also returns how many employees of the same
// snapshot were left out for an unparsable joining date.
func (s *Service) CompanyReportWithExclusions(ctx context.Context) ([]CompanyMonthlyExpense, int, error) {
	snap, err := LoadSnapshot(ctx, s.Store)
	if err != nil {
		return nil, 0, err
	}
	excluded := 0
	for _, emp := range snap.Employees {
		if _, ok := emp.JoinedOn(); !ok {
			excluded++
			s.Logger.Debug("employee excluded from company report", "employee_id", emp.ID, "joining_date", emp.JoiningDate)
		}
	}
	return ComputeCompanyExpenses(snap.Employees, snap.Series(), s.Today()), excluded, nil
}

// SalaryHistory returns salary changes newest-effective first.
func (s *Service) SalaryHistory(ctx context.Context) ([]SalaryChange, error) {
	changes, err := s.Store.SalaryChanges(ctx)
	if err != nil {
		return nil, err
	}
	out := sortedChanges(changes)
	reverse(out)
	return out, nil
}

// AddSalaryChange validates and appends a new company-wide rate.
func (s *Service) AddSalaryChange(ctx context.Context, amount decimal.Decimal, effective generic.TimePoint) (SalaryChange, error) {
	changes, err := s.Store.SalaryChanges(ctx)
	if err != nil {
		return SalaryChange{}, err
	}
	change, err := NewSalaryChange(amount, effective, NewSalarySeries(changes))
	if err != nil {
		return SalaryChange{}, err
	}
	if err := s.Store.AppendSalaryChange(ctx, change); err != nil {
		return SalaryChange{}, fmt.Errorf("append salary change: %w", err)
	}
	s.Logger.Info("salary change recorded", "id", change.ID, "amount", change.Amount.String(), "effective_date", change.EffectiveDate.String())
	return change, nil
}

// RecordAttendance validates and upserts one attendance day.
func (s *Service) RecordAttendance(ctx context.Context, employeeID string, day generic.TimePoint, status AttendanceStatus, details string) (AttendanceEntry, error) {
	entry, err := NewAttendanceEntry(status, details)
	if err != nil {
		return AttendanceEntry{}, err
	}
	if _, err := s.Store.GetEmployee(ctx, employeeID); err != nil {
		return AttendanceEntry{}, err
	}
	if err := s.Store.UpsertAttendance(ctx, employeeID, day, entry); err != nil {
		return AttendanceEntry{}, fmt.Errorf("upsert attendance: %w", err)
	}
	return entry, nil
}

// AttendanceDay returns every employee's entry for day, filtered by query.
func (s *Service) AttendanceDay(ctx context.Context, day generic.TimePoint, query string) ([]DayRow, error) {
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	return DaySheet(FilterEmployees(employees, query), day), nil
}

// RecordDay validates the marks for every employee, then stores the whole
// day at once. Nothing is written if any mark is invalid.
func (s *Service) RecordDay(ctx context.Context, day generic.TimePoint, marks []DayMark) ([]DayRow, error) {
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := BuildDay(employees, marks)
	if err != nil {
		return nil, err
	}
	if err := s.Store.RecordDay(ctx, day, entries); err != nil {
		return nil, fmt.Errorf("record attendance day: %w", err)
	}

	for i := range employees {
		employees[i].SetAttendance(day, entries[employees[i].ID])
	}
	s.Logger.Info("attendance day recorded", "date", day.String(), "employees", len(entries))
	return DaySheet(employees, day), nil
}

// SaveEmployee validates and persists an employee profile.
func (s *Service) SaveEmployee(ctx context.Context, emp Employee) error {
	if err := ValidateEmployee(emp); err != nil {
		return err
	}
	if _, ok := emp.JoinedOn(); !ok {
		s.Logger.Warn("joining date not in DD/MM/YYYY form; employee will not accrue", "employee_id", emp.ID, "joining_date", emp.JoiningDate)
	}
	return s.Store.SaveEmployee(ctx, emp)
}

// ListEmployees returns the roster ordered by index number, filtered by query.
func (s *Service) ListEmployees(ctx context.Context, query string) ([]Employee, error) {
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	SortByIndexNo(employees)
	return FilterEmployees(employees, query), nil
}

func sortedChanges(changes []SalaryChange) []SalaryChange {
	out := make([]SalaryChange, len(changes))
	copy(out, changes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveDate.Before(out[j].EffectiveDate)
	})
	return out
}
