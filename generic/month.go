package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH - The accrual period
// =============================================================================

// Month identifies a calendar month. Salary accrues per Month, never per
// arbitrary range: every walk starts on the 1st and steps one month at a time.
//
// Examples:
//   - MonthOf(2024-01-15) = January 2024
//   - January 2024 has 31 days; February 2024 has 29
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing tp.
func MonthOf(tp TimePoint) Month {
	return Month{Year: tp.Year(), Month: tp.Month()}
}

// Start returns the 1st of the month.
func (m Month) Start() TimePoint { return StartOfMonth(m.Year, m.Month) }

// End returns the last day of the month.
func (m Month) End() TimePoint { return EndOfMonth(m.Year, m.Month) }

// Days returns the number of calendar days in the month.
func (m Month) Days() int { return m.End().Day() }

// Next returns the following month.
func (m Month) Next() Month { return MonthOf(m.Start().AddMonths(1)) }

// Before reports whether m is earlier than other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Contains returns true if tp falls within the month.
func (m Month) Contains(tp TimePoint) bool {
	return tp.Year() == m.Year && tp.Month() == m.Month
}

// String is the display label, e.g. "January 2024".
func (m Month) String() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// Key is the sortable form, e.g. "2024-01".
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// ParseMonthKey parses the Key form.
func ParseMonthKey(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: month %q", ErrInvalidDate, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}
