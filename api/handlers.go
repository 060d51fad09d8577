/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll accrual engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to payroll.Service.

ENDPOINTS:
  Employees:
    GET    /api/employees                          List employees (?q= filter)
    POST   /api/employees                          Create employee
    GET    /api/employees/{id}                     Profile + attendance log
    PUT    /api/employees/{id}                     Update profile
    DELETE /api/employees/{id}                     Delete employee
    PUT    /api/employees/{id}/attendance/{date}   Record one day
    GET    /api/employees/{id}/salary-history      History (?format=xlsx|pdf)
    POST   /api/employees/import                   Roster upload (xlsx)
    GET    /api/employees/export                   Roster download (xlsx)

  Attendance:
    GET    /api/attendance/{date}                  Every employee's entry (?q= filter)
    PUT    /api/attendance/{date}                  Save the whole day, all or nothing

  Salary:
    GET    /api/salary-changes                     Rate history, newest first
    POST   /api/salary-changes                     Append a new rate

  Reports:
    GET    /api/reports/company                    Company expenses (?format=)
    GET    /api/reports/runs                       Scheduled refresh history

  Documents:
    POST   /api/import/document                    Replace data from a JSON export
    GET    /api/export/document                    Download data as a JSON export

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access (reset, report runs, bulk import)
  - Service: Validation and accrual computation
  - Documents: JSON document decoding
  - Scheduler: Report refresh, set by NewReportScheduler

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Employee not found
  - 409: Conflict (unchanged salary, duplicate record)
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. Sign-in is handled in front of
  this service.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/metrics"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

const (
	timeLayout = time.RFC3339

	maxUploadSize   = 5 << 20
	defaultRunLimit = 20
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Service   *payroll.Service
	Documents *factory.DocumentFactory
	Scheduler *ReportScheduler
	Logger    *slog.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over store. loc decides "today" and the
// zone of epoch-millis dates in imported documents.
func NewHandler(store *sqlite.Store, loc *time.Location, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:     store,
		Service:   payroll.NewService(store, loc, logger),
		Documents: factory.NewDocumentFactory(loc),
		Logger:    logger,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the roster ordered by index number.
// GET /api/employees?q=
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.ListEmployees(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeDomainError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns one profile with the current rate and attendance log.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.Store.GetEmployee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}
	changes, err := h.Store.SalaryChanges(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to load salary history", err)
		return
	}

	writeJSON(w, http.StatusOK, EmployeeDetailDTO{
		EmployeeDTO:   toEmployeeDTO(emp),
		CurrentSalary: money(payroll.CurrentSalary(payroll.NewSalarySeries(changes))),
		Attendance:    toAttendanceDTOs(emp),
	})
}

// CreateEmployee adds a new employee. A missing ID is generated.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	} else if _, err := h.Store.GetEmployee(r.Context(), id); err == nil {
		writeError(w, http.StatusConflict, "Employee already exists", nil)
		return
	}

	emp := req.toEmployee(id)
	if err := h.Service.SaveEmployee(r.Context(), emp); err != nil {
		h.writeDomainError(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// UpdateEmployee replaces an employee's profile. Attendance is untouched.
// PUT /api/employees/{id}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return
	}

	emp := req.toEmployee(id)
	if err := h.Service.SaveEmployee(ctx, emp); err != nil {
		h.writeDomainError(w, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee and their attendance.
// DELETE /api/employees/{id}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// RecordAttendance upserts one day. The status must be one of the three
// known values.
// PUT /api/employees/{id}/attendance/{date}
func (h *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	day, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	var req AttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attendance status", err)
		return
	}

	entry, err := h.Service.RecordAttendance(r.Context(), id, day, status, req.Details)
	if err != nil {
		h.writeDomainError(w, "Failed to record attendance", err)
		return
	}
	metrics.IncAttendanceWrite(string(entry.Status))

	writeJSON(w, http.StatusOK, AttendanceDTO{
		Date:    day.String(),
		Status:  string(entry.Status),
		Details: entry.Details,
	})
}

// =============================================================================
// ATTENDANCE DAY HANDLERS
// =============================================================================

// GetAttendanceDay returns every employee's entry for one date, ordered by
// index number. Days never recorded show as Full Completed.
// GET /api/attendance/{date}?q=
func (h *Handler) GetAttendanceDay(w http.ResponseWriter, r *http.Request) {
	day, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	rows, err := h.Service.AttendanceDay(r.Context(), day, r.URL.Query().Get("q"))
	if err != nil {
		h.writeDomainError(w, "Failed to load attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, AttendanceDayResponse{Date: day.String(), Rows: toDayRowDTOs(rows)})
}

// RecordAttendanceDay saves one date for every employee in a single write.
// Employees not listed are saved as Full Completed. If any entry is invalid
// nothing is saved and every problem is reported.
// PUT /api/attendance/{date}
func (h *Handler) RecordAttendanceDay(w http.ResponseWriter, r *http.Request) {
	day, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	var req AttendanceDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	marks := make([]payroll.DayMark, len(req.Entries))
	for i, e := range req.Entries {
		marks[i] = payroll.DayMark{
			EmployeeID: e.EmployeeID,
			Status:     payroll.AttendanceStatus(strings.TrimSpace(e.Status)),
			Details:    e.Details,
		}
	}

	rows, err := h.Service.RecordDay(r.Context(), day, marks)
	if err != nil {
		h.writeDomainError(w, "Failed to record attendance", err)
		return
	}
	for _, row := range rows {
		metrics.IncAttendanceWrite(string(row.Entry.Status))
	}
	writeJSON(w, http.StatusOK, AttendanceDayResponse{Date: day.String(), Rows: toDayRowDTOs(rows)})
}

// GetSalaryHistory returns an employee's monthly accruals, most recent
// first. With ?format=xlsx|pdf the history is sent as a file.
// GET /api/employees/{id}/salary-history
func (h *Handler) GetSalaryHistory(w http.ResponseWriter, r *http.Request) {
	format, ok := formatParam(w, r)
	if !ok {
		return
	}

	start := time.Now()
	report, err := h.Service.EmployeeHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		metrics.ObserveReport(metrics.ReportEmployeeHistory, metrics.ResultError, time.Since(start))
		h.writeDomainError(w, "Failed to compute salary history", err)
		return
	}
	metrics.ObserveReport(metrics.ReportEmployeeHistory, metrics.ResultSuccess, time.Since(start))

	if format != "" {
		h.writeExport(w, format, export.SalaryHistoryFilename(report.Employee, format), func() ([]byte, error) {
			return export.SalaryHistory(report.Employee, report.History, format)
		})
		return
	}

	writeJSON(w, http.StatusOK, SalaryHistoryResponse{
		EmployeeID:    report.Employee.ID,
		FullName:      report.Employee.FullName,
		CurrentSalary: money(report.CurrentSalary),
		History:       toHistoryDTOs(report.History),
	})
}

// ImportEmployees adds every row of an uploaded roster workbook. The file
// comes as multipart field "file" or as the raw request body. Nothing is
// saved unless every row is valid.
// POST /api/employees/import
func (h *Handler) ImportEmployees(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	employees, err := export.ImportRosterBytes(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid roster file", err)
		return
	}

	for i := range employees {
		employees[i].ID = uuid.NewString()
		if err := payroll.ValidateEmployee(employees[i]); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid roster row %d", i+2), err)
			return
		}
	}
	for _, emp := range employees {
		if err := h.Service.SaveEmployee(r.Context(), emp); err != nil {
			h.writeDomainError(w, "Failed to save employee", err)
			return
		}
	}

	h.Logger.Info("roster imported", "employees", len(employees))
	writeJSON(w, http.StatusCreated, ImportResponse{Employees: len(employees)})
}

// ExportEmployees sends the roster as a workbook.
// GET /api/employees/export
func (h *Handler) ExportEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.ListEmployees(r.Context(), "")
	if err != nil {
		h.writeDomainError(w, "Failed to list employees", err)
		return
	}
	h.writeExport(w, export.FormatXLSX, export.FormatXLSX.Filename("Employees"), func() ([]byte, error) {
		return export.Roster(employees)
	})
}

// =============================================================================
// SALARY HANDLERS
// =============================================================================

// ListSalaryChanges returns every rate, newest effective date first.
// GET /api/salary-changes
func (h *Handler) ListSalaryChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := h.Service.SalaryHistory(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list salary changes", err)
		return
	}

	resp := SalaryChangesResponse{
		CurrentSalary: money(payroll.CurrentSalary(payroll.NewSalarySeries(changes))),
		Changes:       make([]SalaryChangeDTO, len(changes)),
	}
	for i, c := range changes {
		resp.Changes[i] = toSalaryChangeDTO(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateSalaryChange appends a new company-wide rate.
// POST /api/salary-changes
func (h *Handler) CreateSalaryChange(w http.ResponseWriter, r *http.Request) {
	var req SalaryChangeRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		metrics.IncSalaryChange(metrics.ResultError)
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := generic.ParseAmount(req.Amount.String())
	if err != nil {
		metrics.IncSalaryChange(metrics.ResultError)
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	if req.EffectiveDate == "" {
		metrics.IncSalaryChange(metrics.ResultError)
		writeError(w, http.StatusBadRequest, "Effective date is required", nil)
		return
	}
	effective, err := generic.ParseDate(req.EffectiveDate)
	if err != nil {
		metrics.IncSalaryChange(metrics.ResultError)
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	change, err := h.Service.AddSalaryChange(r.Context(), amount, effective)
	if err != nil {
		metrics.IncSalaryChange(metrics.ResultError)
		h.writeDomainError(w, "Failed to record salary change", err)
		return
	}
	metrics.IncSalaryChange(metrics.ResultSuccess)
	writeJSON(w, http.StatusCreated, toSalaryChangeDTO(change))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetCompanyReport returns the company's monthly salary expense, most
// recent month first.
// GET /api/reports/company
func (h *Handler) GetCompanyReport(w http.ResponseWriter, r *http.Request) {
	format, ok := formatParam(w, r)
	if !ok {
		return
	}

	start := time.Now()
	report, err := h.Service.CompanyReport(r.Context())
	if err != nil {
		metrics.ObserveReport(metrics.ReportCompany, metrics.ResultError, time.Since(start))
		h.writeDomainError(w, "Failed to compute company report", err)
		return
	}
	metrics.ObserveReport(metrics.ReportCompany, metrics.ResultSuccess, time.Since(start))

	if format != "" {
		h.writeExport(w, format, export.CompanyExpensesFilename(format), func() ([]byte, error) {
			return export.CompanyExpenses(report, format)
		})
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDTOs(report))
}

// ListReportRuns returns recent scheduled refreshes, newest first.
// GET /api/reports/runs?limit=
func (h *Handler) ListReportRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ReportRuns(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, "Failed to get report runs", err)
		return
	}

	resp := ReportRunsResponse{Runs: make([]ReportRunDTO, len(runs))}
	for i, run := range runs {
		resp.Runs[i] = toReportRunDTO(run)
	}
	if h.Scheduler != nil {
		if next, ok := h.Scheduler.GetNextRunTime(); ok {
			s := next.UTC().Format(timeLayout)
			resp.NextRunAt = &s
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// DOCUMENT HANDLERS
// =============================================================================

// ImportDocument replaces all data with the contents of a JSON export
// (config.salaryHistory + employees with tasks). The replacement is one
// transaction: a failed import keeps the previous data.
// POST /api/import/document
func (h *Handler) ImportDocument(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	snap, err := h.Documents.ParseDocument(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	counts, err := h.Store.ReplaceAll(r.Context(), snap)
	if err != nil {
		h.writeDomainError(w, "Failed to import document", err)
		return
	}
	h.currentScenario = ""

	h.Logger.Info("document imported",
		"salary_changes", counts.SalaryChanges,
		"employees", counts.Employees,
		"attendance", counts.Attendance,
		"skipped_keys", counts.SkippedKeys)
	writeJSON(w, http.StatusOK, ImportResponse{
		SalaryChanges: counts.SalaryChanges,
		Employees:     counts.Employees,
		Attendance:    counts.Attendance,
	})
}

// ExportDocument sends all data in the JSON export shape.
// GET /api/export/document
func (h *Handler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	snap, err := payroll.LoadSnapshot(r.Context(), h.Store)
	if err != nil {
		h.writeDomainError(w, "Failed to load data", err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="payroll.json"`)
	writeJSON(w, http.StatusOK, h.Documents.ToJSON(snap))
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error category. Only
// unexpected errors are logged.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.Error(message, "error", err)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// writeExport renders a file and sends it as an attachment.
func (h *Handler) writeExport(w http.ResponseWriter, format export.Format, filename string, render func() ([]byte, error)) {
	start := time.Now()
	data, err := render()
	if err != nil {
		metrics.ObserveExport(string(format), metrics.ResultError, time.Since(start))
		h.Logger.Error("export failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render export", err)
		return
	}
	metrics.ObserveExport(string(format), metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// formatParam reads ?format=. Empty means JSON. On a bad value the 400 is
// already written and ok is false.
func formatParam(w http.ResponseWriter, r *http.Request) (export.Format, bool) {
	v := r.URL.Query().Get("format")
	if v == "" || strings.EqualFold(v, "json") {
		return "", true
	}
	format, err := export.ParseFormat(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format", err)
		return "", false
	}
	return format, true
}

// parseStatus accepts only the three recorded statuses.
func parseStatus(s string) (payroll.AttendanceStatus, error) {
	status := payroll.AttendanceStatus(strings.TrimSpace(s))
	switch status {
	case payroll.StatusFullCompleted, payroll.StatusHalfDone, payroll.StatusNotDone:
		return status, nil
	case "":
		return "", generic.Required("status")
	default:
		return "", &generic.FieldError{Field: "status", Message: fmt.Sprintf("unknown value %q", s)}
	}
}

// readUpload returns the multipart "file" field, or the raw body when the
// request is not multipart.
func readUpload(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, errors.New("file is required")
		}
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
