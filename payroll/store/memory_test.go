package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

func TestMemory_SalaryChangesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	later := payroll.SalaryChange{ID: "1", EffectiveDate: generic.NewTimePoint(2024, time.April, 1), Amount: decimal.NewFromInt(1800)}
	earlier := payroll.SalaryChange{ID: "2", EffectiveDate: generic.NewTimePoint(2024, time.January, 1), Amount: decimal.NewFromInt(1500)}
	require.NoError(t, m.AppendSalaryChange(ctx, later))
	require.NoError(t, m.AppendSalaryChange(ctx, earlier))

	changes, err := m.SalaryChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "1", changes[0].ID)
	assert.Equal(t, "2", changes[1].ID)

	assert.ErrorIs(t, m.AppendSalaryChange(ctx, later), generic.ErrConflict)
}

func TestMemory_EmployeesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SaveEmployee(ctx, payroll.Employee{ID: "a", FullName: "Alice"}))
	require.NoError(t, m.UpsertAttendance(ctx, "a", generic.NewTimePoint(2024, time.May, 1), payroll.AttendanceEntry{Status: payroll.StatusNotDone}))

	got, err := m.GetEmployee(ctx, "a")
	require.NoError(t, err)
	got.Attendance["2024-05-02"] = payroll.AttendanceEntry{Status: payroll.StatusNotDone}

	again, err := m.GetEmployee(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, again.Attendance, 1)
}

func TestMemory_SaveIgnoresAttendanceArgument(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	emp := payroll.Employee{ID: "a", Attendance: map[string]payroll.AttendanceEntry{
		"2024-05-01": {Status: payroll.StatusNotDone},
	}}
	require.NoError(t, m.SaveEmployee(ctx, emp))

	got, err := m.GetEmployee(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got.Attendance)
}

func TestMemory_DeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SaveEmployee(ctx, payroll.Employee{ID: "a"}))
	require.NoError(t, m.SaveEmployee(ctx, payroll.Employee{ID: "b"}))

	require.NoError(t, m.DeleteEmployee(ctx, "a"))
	assert.ErrorIs(t, m.DeleteEmployee(ctx, "a"), payroll.ErrEmployeeNotFound)

	_, err := m.GetEmployee(ctx, "a")
	assert.True(t, generic.IsNotFound(err))

	err = m.UpsertAttendance(ctx, "a", generic.NewTimePoint(2024, time.May, 1), payroll.AttendanceEntry{})
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)

	list, err := m.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}

func TestMemory_Reset(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SaveEmployee(ctx, payroll.Employee{ID: "a"}))
	require.NoError(t, m.AppendSalaryChange(ctx, payroll.SalaryChange{ID: "x"}))

	require.NoError(t, m.Reset(ctx))

	list, _ := m.ListEmployees(ctx)
	changes, _ := m.SalaryChanges(ctx)
	assert.Empty(t, list)
	assert.Empty(t, changes)
}

func TestMemory_RecordDayIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SaveEmployee(ctx, payroll.Employee{ID: "a"}))
	day := generic.NewTimePoint(2024, time.May, 6)

	err := m.RecordDay(ctx, day, map[string]payroll.AttendanceEntry{
		"a":       {Status: payroll.StatusNotDone},
		"missing": {Status: payroll.StatusNotDone},
	})
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)

	got, err := m.GetEmployee(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got.Attendance)

	require.NoError(t, m.RecordDay(ctx, day, map[string]payroll.AttendanceEntry{"a": {Status: payroll.StatusNotDone}}))
	got, err = m.GetEmployee(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusNotDone, got.Attendance["2024-05-06"].Status)
}
