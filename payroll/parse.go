package payroll

import (
	"strconv"
	"strings"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// ParseJoiningDate parses "DD/MM/YYYY". Unpadded day and month ("5/1/2024")
// are accepted; out-of-range values such as 31/02/2024 are rejected rather
// than rolled into the next month.
func ParseJoiningDate(s string) (generic.TimePoint, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return generic.TimePoint{}, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return generic.TimePoint{}, false
		}
		n[i] = v
	}
	day, month, year := n[0], n[1], n[2]
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return generic.TimePoint{}, false
	}
	tp := generic.NewTimePoint(year, time.Month(month), day)
	if tp.Day() != day || int(tp.Month()) != month || tp.Year() != year {
		return generic.TimePoint{}, false
	}
	return tp, true
}

// FormatJoiningDate renders a date in the joining-date form.
func FormatJoiningDate(tp generic.TimePoint) string {
	return tp.Time.Format("02/01/2006")
}
