// Package metrics exposes Prometheus metrics for payroll computations,
// exports and the scheduled report refresh.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const (
	metricPrefix = "payroll_"

	ResultSuccess = "success"
	ResultError   = "error"

	ReportEmployeeHistory = "employee_history"
	ReportCompany         = "company"
)

var (
	registerOnce sync.Once

	reportTotal   *prometheus.CounterVec
	reportLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	salaryChangesTotal    *prometheus.CounterVec
	attendanceWritesTotal *prometheus.CounterVec
	excludedEmployees     prometheus.Gauge

	reportRunsTotal       *prometheus.CounterVec
	reportRunLatency      prometheus.Histogram
	latestCompanyExpense  prometheus.Gauge
	companyReportMonths   prometheus.Gauge
	lastReportRunUnixTime prometheus.Gauge
)

// Init registers payroll metrics with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		reportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_computations_total",
				Help: "Total accrual report computations by kind and result",
			},
			[]string{"kind", "result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_computation_latency_seconds",
				Help:    "Accrual report computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export rendering latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		salaryChangesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "salary_changes_total",
				Help: "Total salary change submissions by result",
			},
			[]string{"result"},
		)
		attendanceWritesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "attendance_writes_total",
				Help: "Total attendance upserts by status",
			},
			[]string{"status"},
		)
		excludedEmployees = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "excluded_employees",
			Help: "Employees left out of the last company report for an unparsable joining date",
		})

		reportRunsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_runs_total",
				Help: "Total scheduled report refresh runs by result",
			},
			[]string{"result"},
		)
		reportRunLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "report_run_duration_seconds",
			Help:    "Scheduled report refresh duration in seconds",
			Buckets: prometheus.DefBuckets,
		})
		latestCompanyExpense = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "company_expense_latest_month",
			Help: "Company salary expense for the most recent reported month",
		})
		companyReportMonths = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "company_report_months",
			Help: "Number of months in the last company report",
		})
		lastReportRunUnixTime = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "report_run_last_success_timestamp_seconds",
			Help: "Unix time of the last successful report refresh",
		})

		prometheus.MustRegister(
			reportTotal,
			reportLatency,
			exportTotal,
			exportLatency,
			salaryChangesTotal,
			attendanceWritesTotal,
			excludedEmployees,
			reportRunsTotal,
			reportRunLatency,
			latestCompanyExpense,
			companyReportMonths,
			lastReportRunUnixTime,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveReport records a report computation.
func ObserveReport(kind, result string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if reportTotal != nil {
		reportTotal.WithLabelValues(kind, result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncSalaryChange counts a salary change submission.
func IncSalaryChange(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if salaryChangesTotal != nil {
		salaryChangesTotal.WithLabelValues(result).Inc()
	}
}

// IncAttendanceWrite counts an attendance upsert.
func IncAttendanceWrite(status string) {
	if status == "" {
		status = "unknown"
	}
	if attendanceWritesTotal != nil {
		attendanceWritesTotal.WithLabelValues(status).Inc()
	}
}

// SetExcludedEmployees records how many employees the last report skipped.
func SetExcludedEmployees(n int) {
	if excludedEmployees != nil {
		excludedEmployees.Set(float64(n))
	}
}

// ObserveReportRun records a scheduled refresh. On success the latest
// month's total and the report length are published.
func ObserveReportRun(result string, duration time.Duration, months int, latest decimal.Decimal) {
	if result == "" {
		result = ResultSuccess
	}
	if reportRunsTotal != nil {
		reportRunsTotal.WithLabelValues(result).Inc()
	}
	if reportRunLatency != nil {
		reportRunLatency.Observe(duration.Seconds())
	}
	if result != ResultSuccess {
		return
	}
	if latestCompanyExpense != nil {
		latestCompanyExpense.Set(latest.InexactFloat64())
	}
	if companyReportMonths != nil {
		companyReportMonths.Set(float64(months))
	}
	if lastReportRunUnixTime != nil {
		lastReportRunUnixTime.SetToCurrentTime()
	}
}
