package factory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

var colombo = time.FixedZone("+0530", 5*3600+1800)

const sampleDocument = `{
  "config": {
    "salaryHistory": {
      "-NqB000002": {"amount": 1800, "effectiveDate": 1711909800000},
      "-NqA000001": {"amount": "1500", "effectiveDate": 1704047400000}
    }
  },
  "employees": {
    "-NqE000001": {
      "indexNo": "1",
      "fullName": "Nimal Perera",
      "joiningDate": "15/01/2024",
      "idNumber": "901234567V",
      "whatsappNumber": "+94 77 123 4567",
      "address": "4 Lake Road",
      "tasks": {
        "2024-02-10": {"status": "Not Done"},
        "2024-02-11": {"status": "Half Done", "details": "left at noon"},
        "2024-02-12": {"status": "On Leave"}
      }
    }
  }
}`

func TestParseDocument(t *testing.T) {
	f := NewDocumentFactory(colombo)

	snap, err := f.ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)

	// Salary changes come back in push-key order with local calendar days.
	require.Len(t, snap.SalaryChanges, 2)
	assert.Equal(t, "-NqA000001", snap.SalaryChanges[0].ID)
	assert.Equal(t, "2024-01-01", snap.SalaryChanges[0].EffectiveDate.String())
	assert.True(t, decimal.NewFromInt(1500).Equal(snap.SalaryChanges[0].Amount))
	assert.Equal(t, "2024-04-01", snap.SalaryChanges[1].EffectiveDate.String())

	require.Len(t, snap.Employees, 1)
	emp := snap.Employees[0]
	assert.Equal(t, "-NqE000001", emp.ID)
	assert.Equal(t, "15/01/2024", emp.JoiningDate)
	assert.Equal(t, payroll.StatusNotDone, emp.Attendance["2024-02-10"].Status)
	assert.Equal(t, "left at noon", emp.Attendance["2024-02-11"].Details)
	assert.Equal(t, payroll.StatusFullCompleted, emp.Attendance["2024-02-12"].Status)
}

func TestParseDocument_DrivesEngine(t *testing.T) {
	f := NewDocumentFactory(colombo)
	snap, err := f.ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)

	history := payroll.ComputeHistory(snap.Employees[0], snap.Series(), generic.NewTimePoint(2024, time.June, 15))

	require.Len(t, history, 6)
	feb := history[4]
	assert.Equal(t, 1, feb.DeductionDays)
	want := decimal.NewFromInt(1500).Sub(decimal.NewFromInt(1500).Div(decimal.NewFromInt(28)))
	assert.True(t, want.Equal(feb.NetSalary))
}

func TestParseDocument_Errors(t *testing.T) {
	f := NewDocumentFactory(time.UTC)

	_, err := f.ParseDocument([]byte(`{"config":`))
	assert.Error(t, err)

	_, err = f.ParseDocument([]byte(`{"config":{"salaryHistory":{"a":{"amount":-5,"effectiveDate":0}}}}`))
	assert.ErrorIs(t, err, generic.ErrValidation)

	_, err = f.ParseDocument([]byte(`{"config":{"salaryHistory":{"a":{"amount":5}}}}`))
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestParseDocument_EmptyCollections(t *testing.T) {
	snap, err := NewDocumentFactory(time.UTC).ParseDocument([]byte(`{"config":{}}`))
	require.NoError(t, err)
	assert.Empty(t, snap.SalaryChanges)
	assert.Empty(t, snap.Employees)
}

func TestParseCollections(t *testing.T) {
	f := NewDocumentFactory(time.UTC)

	changes, err := f.ParseSalaryHistory([]byte(`{"k1":{"amount":1200.5,"effectiveDate":1704067200000}}`))
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.True(t, decimal.RequireFromString("1200.5").Equal(changes[0].Amount))
	assert.Equal(t, "2024-01-01", changes[0].EffectiveDate.String())

	employees, err := f.ParseEmployees([]byte(`{"e1":{"fullName":"A","joiningDate":"1/2/2024"}}`))
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Nil(t, employees[0].Attendance)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := NewDocumentFactory(colombo)
	snap, err := f.ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)

	data, err := json.Marshal(f.ToJSON(snap))
	require.NoError(t, err)

	again, err := f.ParseDocument(data)
	require.NoError(t, err)
	require.Len(t, again.SalaryChanges, 2)
	for i := range snap.SalaryChanges {
		assert.Equal(t, snap.SalaryChanges[i].ID, again.SalaryChanges[i].ID)
		assert.True(t, snap.SalaryChanges[i].EffectiveDate.Equal(again.SalaryChanges[i].EffectiveDate))
		assert.True(t, snap.SalaryChanges[i].Amount.Equal(again.SalaryChanges[i].Amount))
	}
	assert.Equal(t, snap.Employees, again.Employees)
}
