/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario sets up the expected state and that the
	accrual results match the figures quoted in the loaders' comments.
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msgAndArgs...)
}

func TestScenario_EndToEnd(t *testing.T) {
	// GIVEN: End-to-end scenario
	// WHEN: Loading the scenario
	// THEN: Two rates, one employee, history as documented
	h := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadEndToEndScenario(ctx))

	changes, err := h.Store.SalaryChanges(ctx)
	require.NoError(t, err)
	assert.Len(t, changes, 2)

	report, err := h.Service.EmployeeHistory(ctx, "emp-ayesha")
	require.NoError(t, err)
	require.Len(t, report.History, 6)
	assertMoney(t, "1800.00", report.History[0].NetSalary, "June")
	assertMoney(t, "1446.43", report.History[4].NetSalary, "February")
	assertMoney(t, "822.58", report.History[5].GrossSalary, "January")
}

func TestScenario_MidMonthJoiner(t *testing.T) {
	h := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadMidMonthJoinerScenario(ctx))

	report, err := h.Service.EmployeeHistory(ctx, "emp-nimal")
	require.NoError(t, err)
	require.Len(t, report.History, 1, "today is in the joining month")
	assertMoney(t, "2100.00", report.History[0].GrossSalary)
	assert.Equal(t, 0, report.History[0].DeductionDays, "Half Done does not deduct")
	assertMoney(t, "2100.00", report.History[0].NetSalary)

	// The July day is recorded but not yet reached.
	emp, err := h.Store.GetEmployee(ctx, "emp-nimal")
	require.NoError(t, err)
	assert.Len(t, emp.Attendance, 3)
	assert.Equal(t, payroll.StatusHalfDone, emp.Attendance["2024-06-11"].Status)
	assert.NotEmpty(t, emp.Attendance["2024-06-11"].Details)
}

func TestScenario_NegativeNet(t *testing.T) {
	h := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadNegativeNetScenario(ctx))

	kamal, err := h.Service.EmployeeHistory(ctx, "emp-kamal")
	require.NoError(t, err)
	feb := kamal.History[len(kamal.History)-1]
	assert.Equal(t, 15, feb.DeductionDays)
	assertMoney(t, "1000.00", feb.GrossSalary)
	assertMoney(t, "-500.00", feb.NetSalary)

	company, err := h.Service.CompanyReport(ctx)
	require.NoError(t, err)
	require.Len(t, company, 5)
	assertMoney(t, "2900.00", company[4].TotalExpense, "February floors Kamal at zero")
	assertMoney(t, "5800.00", company[3].TotalExpense, "March")
}

func TestScenario_Roster(t *testing.T) {
	h := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadRosterScenario(ctx))

	employees, err := h.Service.ListEmployees(ctx, "")
	require.NoError(t, err)
	require.Len(t, employees, 4)

	// The pending employee never accrues, but is still listed.
	pending, err := h.Service.EmployeeHistory(ctx, "emp-unknown")
	require.NoError(t, err)
	assert.Empty(t, pending.History)

	// Unpadded joining date is accepted: 5 March 2024 onwards.
	ruwan, err := h.Service.EmployeeHistory(ctx, "emp-ruwan")
	require.NoError(t, err)
	require.Len(t, ruwan.History, 4)
	assert.Equal(t, "2024-03", ruwan.History[3].Month.Key())

	// 1350 took effect mid-January, so January is still paid at 1200.
	dilani, err := h.Service.EmployeeHistory(ctx, "emp-dilani")
	require.NoError(t, err)
	byMonth := map[string]payroll.MonthlyAccrual{}
	for _, acc := range dilani.History {
		byMonth[acc.Month.Key()] = acc
	}
	assertMoney(t, "1200.00", byMonth["2024-01"].GrossSalary)
	assertMoney(t, "1350.00", byMonth["2024-02"].GrossSalary)
	assertMoney(t, "1200.00", byMonth["2023-07"].GrossSalary)
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	// GIVEN: All available scenarios
	// WHEN: Loading each through the API
	// THEN: None should error and the current scenario is tracked
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			h, router := setupTestRouter(t)

			loadScenario(t, router, s.ID)

			current := decode[ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", nil))
			assert.Equal(t, s.ID, current.ID)
			assert.Equal(t, s.ID, h.currentScenario)
		})
	}
}

func TestScenario_LoadReplacesPreviousData(t *testing.T) {
	_, router := setupTestRouter(t)

	loadScenario(t, router, "roster")
	loadScenario(t, router, "end-to-end")

	list := decode[[]EmployeeDTO](t, do(t, router, http.MethodGet, "/api/employees", nil))
	require.Len(t, list, 1)
	assert.Equal(t, "emp-ayesha", list[0].ID)
}

func TestScenario_ListUnknownAndReset(t *testing.T) {
	_, router := setupTestRouter(t)

	list := decode[[]ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios", nil))
	assert.Len(t, list, len(scenarios))

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "year-end"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	loadScenario(t, router, "end-to-end")
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/scenarios/reset", nil).Code)

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
	assert.Empty(t, decode[[]EmployeeDTO](t, do(t, router, http.MethodGet, "/api/employees", nil)))
}
