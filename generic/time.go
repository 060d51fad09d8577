/*
Package generic provides the calendar and effective-dating primitives the
payroll engine is built on.

KEY CONCEPTS:
  - TimePoint: A calendar day, compared by date only
  - Month: A calendar month, the unit of accrual
  - EffectiveSeries: Values that take effect on a date and stay in force
    until a later one does
  - Sentinel and field errors shared by every package

DESIGN PRINCIPLES:
  1. Day granularity: no clock times in domain values
  2. Precision: money is decimal.Decimal, never float64
  3. No I/O: everything here is pure and safe for concurrent use

SEE ALSO:
  - payroll/: The accrual engine
*/
package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar day abstraction (payroll works at day granularity)
// =============================================================================

// TimePoint is a calendar date. The wall clock is always midnight UTC so that
// two TimePoints compare by calendar day only, whatever zone they came from.
type TimePoint struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as observed in t's own location.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day in loc (time.Local when nil).
func Today(loc *time.Location) TimePoint {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// FromUnixMilli converts an epoch-millis instant to its calendar day in loc.
func FromUnixMilli(ms int64, loc *time.Location) TimePoint {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.UnixMilli(ms).In(loc))
}

// UnixMilli returns midnight of the day in loc as epoch millis.
func (tp TimePoint) UnixMilli(loc *time.Location) int64 {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(tp.Year(), tp.Month(), tp.Day(), 0, 0, 0, 0, loc).UnixMilli()
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	return tp.Time.Format(dateLayout)
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return TimePoint{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}
