package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestObserveFunctions(t *testing.T) {
	Init()

	before := testutil.ToFloat64(reportTotal.WithLabelValues(ReportCompany, ResultSuccess))
	ObserveReport(ReportCompany, "", 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(reportTotal.WithLabelValues(ReportCompany, ResultSuccess)))

	before = testutil.ToFloat64(exportTotal.WithLabelValues("pdf", ResultError))
	ObserveExport("pdf", ResultError, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(exportTotal.WithLabelValues("pdf", ResultError)))

	ObserveReportRun(ResultSuccess, time.Second, 6, decimal.RequireFromString("3600.5"))
	assert.Equal(t, 3600.5, testutil.ToFloat64(latestCompanyExpense))
	assert.Equal(t, float64(6), testutil.ToFloat64(companyReportMonths))

	// Failed runs leave the published totals alone.
	ObserveReportRun(ResultError, time.Second, 0, decimal.Zero)
	assert.Equal(t, 3600.5, testutil.ToFloat64(latestCompanyExpense))

	SetExcludedEmployees(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(excludedEmployees))
}

func TestHandlerServesMetrics(t *testing.T) {
	Init()
	IncSalaryChange(ResultSuccess)
	IncAttendanceWrite("Not Done")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "payroll_salary_changes_total"))
	assert.True(t, strings.Contains(body, `payroll_attendance_writes_total{status="Not Done"}`))
}
