/*
Package sqlite provides a SQLite-backed implementation of payroll.Store.

PURPOSE:
  Persists the three inputs of the accrual engine (salary changes, employee
  profiles, attendance) plus the log of report refresh runs. In production
  the same patterns apply to PostgreSQL with minor dialect differences.

INTERFACES IMPLEMENTED:
  payroll.Store:          Salary changes, employees, attendance
  payroll.SnapshotReader: Both engine inputs read in one transaction

TRANSACTIONS:
  Snapshot reads, RecordDay and ReplaceAll each run in one transaction.
  RecordDay writes a whole day's sheet or nothing; ReplaceAll keeps the
  previous data when any insert fails.

APPEND-ONLY ENFORCEMENT:
  salary_changes is never updated or deleted by this package (Reset aside).
  Rows keep an autoincrement seq so SalaryChanges returns insertion order,
  which is the tie-break for two changes on the same effective date.

KEY TABLES:
  salary_changes: Company-wide rates, effective-dated
  employees:      Profiles; joining_date is stored exactly as entered
  attendance:     One row per (employee, date), upserted
  report_runs:    Scheduled company report refreshes

AMOUNTS:
  Stored as decimal strings (never REAL) so that 1500/31 style values
  round-trip exactly.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The pool is pinned to one connection
  so ":memory:" databases behave as a single database.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := payroll.NewService(store, loc, logger)

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Salary changes (append-only)
	CREATE TABLE IF NOT EXISTS salary_changes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		effective_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_salary_changes_effective_date
		ON salary_changes(effective_date);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		index_no TEXT NOT NULL,
		full_name TEXT NOT NULL,
		joining_date TEXT NOT NULL,
		id_number TEXT NOT NULL,
		whatsapp_number TEXT NOT NULL,
		address TEXT NOT NULL,
		bank_holder_name TEXT,
		account_number TEXT,
		bank_name TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Attendance (sparse: missing day = Full Completed)
	CREATE TABLE IF NOT EXISTS attendance (
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		details TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	-- Deduction lookups by month
	CREATE INDEX IF NOT EXISTS idx_attendance_status_date
		ON attendance(status, date);

	-- Report refresh runs
	CREATE TABLE IF NOT EXISTS report_runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'running',
		months INTEGER DEFAULT 0,
		latest_total TEXT,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_report_runs_started
		ON report_runs(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SALARY CHANGES
// =============================================================================

// AppendSalaryChange adds a rate. A duplicate ID is a conflict.
func (s *Store) AppendSalaryChange(ctx context.Context, change payroll.SalaryChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertSalaryChange(ctx, s.db, change)
}

func insertSalaryChange(ctx context.Context, e execer, change payroll.SalaryChange) error {
	createdAt := change.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := e.ExecContext(ctx, `
		INSERT INTO salary_changes (id, effective_date, amount, created_at)
		VALUES (?, ?, ?, ?)
	`,
		change.ID,
		change.EffectiveDate.String(),
		change.Amount.String(),
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("salary change %s: %w", change.ID, generic.ErrConflict)
		}
		return fmt.Errorf("failed to append salary change: %w", err)
	}
	return nil
}

// SalaryChanges returns all changes in insertion order.
func (s *Store) SalaryChanges(ctx context.Context) ([]payroll.SalaryChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return querySalaryChanges(ctx, s.db)
}

func querySalaryChanges(ctx context.Context, q queryer) ([]payroll.SalaryChange, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, effective_date, amount, created_at FROM salary_changes ORDER BY seq",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []payroll.SalaryChange
	for rows.Next() {
		var c payroll.SalaryChange
		var effectiveDate, amount, createdAt string
		if err := rows.Scan(&c.ID, &effectiveDate, &amount, &createdAt); err != nil {
			return nil, err
		}
		c.EffectiveDate, err = generic.ParseDate(effectiveDate)
		if err != nil {
			return nil, fmt.Errorf("salary change %s: %w", c.ID, err)
		}
		c.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("salary change %s: bad amount %q: %w", c.ID, amount, err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = `id, index_no, full_name, joining_date, id_number, whatsapp_number,
	address, bank_holder_name, account_number, bank_name`

// SaveEmployee inserts or updates a profile. Attendance is untouched.
func (s *Store) SaveEmployee(ctx context.Context, emp payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveEmployee(ctx, s.db, emp)
}

func saveEmployee(ctx context.Context, e execer, emp payroll.Employee) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO employees (` + employeeColumns + `, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			index_no = excluded.index_no,
			full_name = excluded.full_name,
			joining_date = excluded.joining_date,
			id_number = excluded.id_number,
			whatsapp_number = excluded.whatsapp_number,
			address = excluded.address,
			bank_holder_name = excluded.bank_holder_name,
			account_number = excluded.account_number,
			bank_name = excluded.bank_name,
			updated_at = excluded.updated_at
	`

	_, err := e.ExecContext(ctx, query,
		emp.ID, emp.IndexNo, emp.FullName, emp.JoiningDate, emp.IDNumber,
		emp.WhatsappNumber, emp.Address,
		nullString(emp.BankHolderName), nullString(emp.AccountNumber), nullString(emp.BankName),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee retrieves an employee and their attendance.
func (s *Store) GetEmployee(ctx context.Context, id string) (payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employees, err := queryEmployees(ctx, s.db, "WHERE id = ?", id)
	if err != nil {
		return payroll.Employee{}, err
	}
	if len(employees) == 0 {
		return payroll.Employee{}, payroll.ErrEmployeeNotFound
	}
	if err := loadAttendance(ctx, s.db, employees, "WHERE employee_id = ?", id); err != nil {
		return payroll.Employee{}, err
	}
	return employees[0], nil
}

// ListEmployees returns all employees with attendance, ordered by ID.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listEmployees(ctx, s.db)
}

func listEmployees(ctx context.Context, q queryer) ([]payroll.Employee, error) {
	employees, err := queryEmployees(ctx, q, "")
	if err != nil {
		return nil, err
	}
	if err := loadAttendance(ctx, q, employees, ""); err != nil {
		return nil, err
	}
	return employees, nil
}

func queryEmployees(ctx context.Context, q queryer, where string, args ...any) ([]payroll.Employee, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees "+where+" ORDER BY id", args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		var emp payroll.Employee
		var holder, account, bank sql.NullString
		if err := rows.Scan(
			&emp.ID, &emp.IndexNo, &emp.FullName, &emp.JoiningDate, &emp.IDNumber,
			&emp.WhatsappNumber, &emp.Address, &holder, &account, &bank,
		); err != nil {
			return nil, err
		}
		emp.BankHolderName = holder.String
		emp.AccountNumber = account.String
		emp.BankName = bank.String
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// loadAttendance fills Attendance on employees. The employee rows must be
// fully read first: the pool has a single connection.
func loadAttendance(ctx context.Context, q queryer, employees []payroll.Employee, where string, args ...any) error {
	if len(employees) == 0 {
		return nil
	}
	byID := make(map[string]int, len(employees))
	for i := range employees {
		byID[employees[i].ID] = i
	}

	rows, err := q.QueryContext(ctx,
		"SELECT employee_id, date, status, details FROM attendance "+where, args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID, date, status string
		var details sql.NullString
		if err := rows.Scan(&employeeID, &date, &status, &details); err != nil {
			return err
		}
		i, ok := byID[employeeID]
		if !ok {
			continue
		}
		if employees[i].Attendance == nil {
			employees[i].Attendance = make(map[string]payroll.AttendanceEntry)
		}
		employees[i].Attendance[date] = payroll.AttendanceEntry{
			Status:  payroll.ParseAttendanceStatus(status),
			Details: details.String,
		}
	}
	return rows.Err()
}

// DeleteEmployee removes an employee. Attendance goes with it.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrEmployeeNotFound
	}
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// UpsertAttendance records one day for an employee.
func (s *Store) UpsertAttendance(ctx context.Context, employeeID string, day generic.TimePoint, entry payroll.AttendanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return upsertAttendance(ctx, s.db, employeeID, day, entry)
}

// RecordDay upserts one entry per employee for day inside a single
// transaction. An unknown employee rolls back the whole day.
func (s *Store) RecordDay(ctx context.Context, day generic.TimePoint, entries map[string]payroll.AttendanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance day: %w", err)
	}
	defer tx.Rollback()

	for _, id := range sortedIDs(entries) {
		if err := upsertAttendance(ctx, tx, id, day, entries[id]); err != nil {
			return fmt.Errorf("employee %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func upsertAttendance(ctx context.Context, e execer, employeeID string, day generic.TimePoint, entry payroll.AttendanceEntry) error {
	query := `
		INSERT INTO attendance (employee_id, date, status, details, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			status = excluded.status,
			details = excluded.details,
			updated_at = excluded.updated_at
	`

	_, err := e.ExecContext(ctx, query,
		employeeID, day.String(), string(entry.Status), nullString(entry.Details),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return payroll.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

// =============================================================================
// SNAPSHOT (payroll.SnapshotReader)
// =============================================================================

// Snapshot reads salary history and every employee inside one read
// transaction, so a concurrent write cannot land between the two reads.
func (s *Store) Snapshot(ctx context.Context) (payroll.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return payroll.Snapshot{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	changes, err := querySalaryChanges(ctx, tx)
	if err != nil {
		return payroll.Snapshot{}, err
	}
	employees, err := listEmployees(ctx, tx)
	if err != nil {
		return payroll.Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return payroll.Snapshot{}, err
	}
	return payroll.Snapshot{SalaryChanges: changes, Employees: employees}, nil
}

// =============================================================================
// REPORT RUNS
// =============================================================================

// ReportRun records one scheduled refresh of the company report.
type ReportRun struct {
	ID          string
	Status      string // running, completed, failed
	Months      int
	LatestTotal decimal.Decimal
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// SaveReportRun inserts or updates a run.
func (s *Store) SaveReportRun(ctx context.Context, r ReportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO report_runs (id, status, months, latest_total, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			months = excluded.months,
			latest_total = excluded.latest_total,
			error = excluded.error,
			completed_at = excluded.completed_at
	`

	var completedAt *string
	if r.CompletedAt != nil {
		s := r.CompletedAt.UTC().Format(time.RFC3339)
		completedAt = &s
	}

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Status, r.Months, r.LatestTotal.String(), nullString(r.Error),
		r.StartedAt.UTC().Format(time.RFC3339), completedAt,
	)
	return err
}

// ReportRuns returns the most recent runs first. limit <= 0 means all.
func (s *Store) ReportRuns(ctx context.Context, limit int) ([]ReportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, status, months, latest_total, error, started_at, completed_at
		FROM report_runs
		ORDER BY started_at DESC, rowid DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ReportRun
	for rows.Next() {
		var r ReportRun
		var total, runErr, completedAt sql.NullString
		var startedAt string
		if err := rows.Scan(&r.ID, &r.Status, &r.Months, &total, &runErr, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		if total.Valid {
			r.LatestTotal, _ = decimal.NewFromString(total.String)
		}
		r.Error = runErr.String
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if completedAt.Valid {
			t, _ := time.Parse(time.RFC3339, completedAt.String)
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return clearTables(ctx, s.db)
}

func clearTables(ctx context.Context, e execer) error {
	tables := []string{"attendance", "employees", "salary_changes", "report_runs"}
	for _, table := range tables {
		if _, err := e.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceCounts reports what ReplaceAll wrote.
type ReplaceCounts struct {
	SalaryChanges int
	Employees     int
	Attendance    int
	// SkippedKeys counts attendance keys that are not YYYY-MM-DD dates.
	SkippedKeys int
}

// ReplaceAll clears every table and writes snap in one transaction. On
// any error the previous data is left as it was.
func (s *Store) ReplaceAll(ctx context.Context, snap payroll.Snapshot) (ReplaceCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var counts ReplaceCounts
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if err := clearTables(ctx, tx); err != nil {
		return ReplaceCounts{}, fmt.Errorf("clear tables: %w", err)
	}
	for _, c := range snap.SalaryChanges {
		if err := insertSalaryChange(ctx, tx, c); err != nil {
			return ReplaceCounts{}, err
		}
		counts.SalaryChanges++
	}
	for _, emp := range snap.Employees {
		if err := saveEmployee(ctx, tx, emp); err != nil {
			return ReplaceCounts{}, err
		}
		counts.Employees++
		for _, key := range sortedIDs(emp.Attendance) {
			day, err := generic.ParseDate(key)
			if err != nil {
				counts.SkippedKeys++
				continue
			}
			if err := upsertAttendance(ctx, tx, emp.ID, day, emp.Attendance[key]); err != nil {
				return ReplaceCounts{}, fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			counts.Attendance++
		}
	}
	if err := tx.Commit(); err != nil {
		return ReplaceCounts{}, fmt.Errorf("commit replace: %w", err)
	}
	return counts, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func sortedIDs[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

var _ payroll.Store = (*Store)(nil)
var _ payroll.SnapshotReader = (*Store)(nil)
