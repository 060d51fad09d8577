// Package store provides in-memory payroll.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu            sync.RWMutex
	salaryChanges []payroll.SalaryChange
	employees     map[string]payroll.Employee
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[string]payroll.Employee),
	}
}

// AppendSalaryChange adds a rate. Append-only.
func (m *Memory) AppendSalaryChange(_ context.Context, change payroll.SalaryChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.salaryChanges {
		if existing.ID == change.ID {
			return generic.ErrConflict
		}
	}
	m.salaryChanges = append(m.salaryChanges, change)
	return nil
}

func (m *Memory) SalaryChanges(_ context.Context) ([]payroll.SalaryChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]payroll.SalaryChange, len(m.salaryChanges))
	copy(result, m.salaryChanges)
	return result, nil
}

// SaveEmployee upserts the profile and keeps recorded attendance.
func (m *Memory) SaveEmployee(_ context.Context, emp payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.employees[emp.ID]; ok {
		emp.Attendance = existing.Attendance
	} else {
		emp.Attendance = nil
	}
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id string) (payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return payroll.Employee{}, payroll.ErrEmployeeNotFound
	}
	return cloneEmployee(emp), nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]payroll.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		result = append(result, cloneEmployee(emp))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[id]; !ok {
		return payroll.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *Memory) UpsertAttendance(_ context.Context, employeeID string, day generic.TimePoint, entry payroll.AttendanceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	emp, ok := m.employees[employeeID]
	if !ok {
		return payroll.ErrEmployeeNotFound
	}
	emp = cloneEmployee(emp)
	emp.SetAttendance(day, entry)
	m.employees[employeeID] = emp
	return nil
}

// RecordDay checks every employee before writing any entry.
func (m *Memory) RecordDay(_ context.Context, day generic.TimePoint, entries map[string]payroll.AttendanceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range entries {
		if _, ok := m.employees[id]; !ok {
			return payroll.ErrEmployeeNotFound
		}
	}
	for id, entry := range entries {
		emp := cloneEmployee(m.employees[id])
		emp.SetAttendance(day, entry)
		m.employees[id] = emp
	}
	return nil
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.salaryChanges = nil
	m.employees = make(map[string]payroll.Employee)
	return nil
}

// cloneEmployee copies the attendance map so callers never share it.
func cloneEmployee(emp payroll.Employee) payroll.Employee {
	if emp.Attendance == nil {
		return emp
	}
	attendance := make(map[string]payroll.AttendanceEntry, len(emp.Attendance))
	for k, v := range emp.Attendance {
		attendance[k] = v
	}
	emp.Attendance = attendance
	return emp
}
