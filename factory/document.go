/*
Package factory converts document-store JSON exports into payroll records.

PURPOSE:
  The payroll data historically lived in a realtime document store. An
  export of that store is a single JSON tree; this package turns it into a
  payroll.Snapshot that can be loaded into a Store or fed to the engine
  directly, and renders a Snapshot back into the same shape.

JSON SCHEMA:
  {
    "config": {
      "salaryHistory": {
        "-NqA1...": {"amount": 1500, "effectiveDate": 1704067200000}
      }
    },
    "employees": {
      "-NqB7...": {
        "indexNo": "1",
        "fullName": "Nimal Perera",
        "joiningDate": "15/01/2024",
        "idNumber": "901234567V",
        "whatsappNumber": "+94 77 123 4567",
        "address": "4 Lake Road",
        "bankHolderName": "", "accountNumber": "", "bankName": "",
        "tasks": {
          "2024-02-10": {"status": "Not Done", "details": ""}
        }
      }
    }
  }

KEY FEATURES:
  - Push keys become record IDs
  - Push keys sort by creation time, so salary changes keep insertion order
  - effectiveDate is epoch millis, read as a calendar day in Location
  - joiningDate and task keys are kept exactly as entered
  - Amounts accept JSON numbers or numeric strings

USAGE:
  f := factory.NewDocumentFactory(loc)
  snap, err := f.ParseDocument(body)

SEE ALSO:
  - payroll/store.go: Snapshot
  - api/handlers.go: POST /api/import/document
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// DocumentJSON is the root of a document-store export.
type DocumentJSON struct {
	Config    ConfigJSON              `json:"config"`
	Employees map[string]EmployeeJSON `json:"employees,omitempty"`
}

// ConfigJSON holds company-wide settings.
type ConfigJSON struct {
	SalaryHistory map[string]SalaryChangeJSON `json:"salaryHistory,omitempty"`
}

// SalaryChangeJSON is one salary history entry.
type SalaryChangeJSON struct {
	Amount        json.Number `json:"amount"`
	EffectiveDate json.Number `json:"effectiveDate"` // epoch millis
}

// EmployeeJSON is one employee node.
type EmployeeJSON struct {
	IndexNo        string              `json:"indexNo"`
	FullName       string              `json:"fullName"`
	JoiningDate    string              `json:"joiningDate"`
	IDNumber       string              `json:"idNumber"`
	WhatsappNumber string              `json:"whatsappNumber"`
	Address        string              `json:"address"`
	BankHolderName string              `json:"bankHolderName,omitempty"`
	AccountNumber  string              `json:"accountNumber,omitempty"`
	BankName       string              `json:"bankName,omitempty"`
	Tasks          map[string]TaskJSON `json:"tasks,omitempty"`
}

// TaskJSON is one attendance day.
type TaskJSON struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// DOCUMENT FACTORY
// =============================================================================

// DocumentFactory converts between export JSON and payroll records.
type DocumentFactory struct {
	Location *time.Location
}

// NewDocumentFactory creates a factory reading dates in loc (time.Local
// when nil).
func NewDocumentFactory(loc *time.Location) *DocumentFactory {
	if loc == nil {
		loc = time.Local
	}
	return &DocumentFactory{Location: loc}
}

// ParseDocument parses a full export.
func (f *DocumentFactory) ParseDocument(data []byte) (payroll.Snapshot, error) {
	var doc DocumentJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return payroll.Snapshot{}, fmt.Errorf("failed to parse document JSON: %w", err)
	}
	return f.FromJSON(doc)
}

// ParseSalaryHistory parses the config/salaryHistory collection alone.
func (f *DocumentFactory) ParseSalaryHistory(data []byte) ([]payroll.SalaryChange, error) {
	var history map[string]SalaryChangeJSON
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse salary history JSON: %w", err)
	}
	return f.salaryChanges(history)
}

// ParseEmployees parses the employees collection alone.
func (f *DocumentFactory) ParseEmployees(data []byte) ([]payroll.Employee, error) {
	var employees map[string]EmployeeJSON
	if err := json.Unmarshal(data, &employees); err != nil {
		return nil, fmt.Errorf("failed to parse employees JSON: %w", err)
	}
	return f.employees(employees), nil
}

// FromJSON converts a decoded document into a Snapshot.
func (f *DocumentFactory) FromJSON(doc DocumentJSON) (payroll.Snapshot, error) {
	changes, err := f.salaryChanges(doc.Config.SalaryHistory)
	if err != nil {
		return payroll.Snapshot{}, err
	}
	return payroll.Snapshot{
		SalaryChanges: changes,
		Employees:     f.employees(doc.Employees),
	}, nil
}

// ToJSON renders a Snapshot in export form.
func (f *DocumentFactory) ToJSON(snap payroll.Snapshot) DocumentJSON {
	doc := DocumentJSON{
		Config: ConfigJSON{SalaryHistory: make(map[string]SalaryChangeJSON, len(snap.SalaryChanges))},
	}
	for _, c := range snap.SalaryChanges {
		doc.Config.SalaryHistory[c.ID] = SalaryChangeJSON{
			Amount:        json.Number(c.Amount.String()),
			EffectiveDate: json.Number(strconv.FormatInt(c.EffectiveDate.UnixMilli(f.Location), 10)),
		}
	}
	if len(snap.Employees) > 0 {
		doc.Employees = make(map[string]EmployeeJSON, len(snap.Employees))
	}
	for _, e := range snap.Employees {
		ej := EmployeeJSON{
			IndexNo:        e.IndexNo,
			FullName:       e.FullName,
			JoiningDate:    e.JoiningDate,
			IDNumber:       e.IDNumber,
			WhatsappNumber: e.WhatsappNumber,
			Address:        e.Address,
			BankHolderName: e.BankHolderName,
			AccountNumber:  e.AccountNumber,
			BankName:       e.BankName,
		}
		if len(e.Attendance) > 0 {
			ej.Tasks = make(map[string]TaskJSON, len(e.Attendance))
			for day, entry := range e.Attendance {
				ej.Tasks[day] = TaskJSON{Status: string(entry.Status), Details: entry.Details}
			}
		}
		doc.Employees[e.ID] = ej
	}
	return doc
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func (f *DocumentFactory) salaryChanges(history map[string]SalaryChangeJSON) ([]payroll.SalaryChange, error) {
	changes := make([]payroll.SalaryChange, 0, len(history))
	for _, key := range sortedKeys(history) {
		sj := history[key]
		amount, err := parseAmount(sj.Amount)
		if err != nil {
			return nil, fmt.Errorf("salaryHistory/%s: %w", key, err)
		}
		ms, err := parseMillis(sj.EffectiveDate)
		if err != nil {
			return nil, fmt.Errorf("salaryHistory/%s: %w", key, err)
		}
		changes = append(changes, payroll.SalaryChange{
			ID:            key,
			EffectiveDate: generic.FromUnixMilli(ms, f.Location),
			Amount:        amount,
		})
	}
	return changes, nil
}

func (f *DocumentFactory) employees(nodes map[string]EmployeeJSON) []payroll.Employee {
	employees := make([]payroll.Employee, 0, len(nodes))
	for _, key := range sortedKeys(nodes) {
		ej := nodes[key]
		emp := payroll.Employee{
			ID:             key,
			IndexNo:        ej.IndexNo,
			FullName:       ej.FullName,
			JoiningDate:    ej.JoiningDate,
			IDNumber:       ej.IDNumber,
			WhatsappNumber: ej.WhatsappNumber,
			Address:        ej.Address,
			BankHolderName: ej.BankHolderName,
			AccountNumber:  ej.AccountNumber,
			BankName:       ej.BankName,
		}
		if len(ej.Tasks) > 0 {
			emp.Attendance = make(map[string]payroll.AttendanceEntry, len(ej.Tasks))
			for day, task := range ej.Tasks {
				emp.Attendance[day] = payroll.AttendanceEntry{
					Status:  payroll.ParseAttendanceStatus(task.Status),
					Details: task.Details,
				}
			}
		}
		employees = append(employees, emp)
	}
	return employees
}

func parseAmount(n json.Number) (decimal.Decimal, error) {
	amount, err := generic.ParseAmount(string(n))
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, payroll.ErrInvalidAmount
	}
	return amount, nil
}

func parseMillis(n json.Number) (int64, error) {
	if n == "" {
		return 0, generic.Required("effectiveDate")
	}
	if ms, err := n.Int64(); err == nil {
		return ms, nil
	}
	fl, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: effectiveDate %q", generic.ErrInvalidDate, n)
	}
	return int64(fl), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
