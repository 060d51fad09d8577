package payroll

import (
	"sort"
	"strings"

	"github.com/warp/payroll-engine/generic"
)

// NewAttendanceEntry validates one day's attendance. Half Done requires
// details; every other status drops them.
func NewAttendanceEntry(status AttendanceStatus, details string) (AttendanceEntry, error) {
	details = strings.TrimSpace(details)
	if status == StatusHalfDone {
		if details == "" {
			return AttendanceEntry{}, ErrDetailsRequired
		}
		return AttendanceEntry{Status: status, Details: details}, nil
	}
	return AttendanceEntry{Status: status}, nil
}

// SetAttendance upserts the entry for day.
func (e *Employee) SetAttendance(day generic.TimePoint, entry AttendanceEntry) {
	if e.Attendance == nil {
		e.Attendance = make(map[string]AttendanceEntry)
	}
	e.Attendance[day.String()] = entry
}

// DatedEntry is an attendance entry with its parsed date.
type DatedEntry struct {
	Date generic.TimePoint
	AttendanceEntry
}

// AttendanceLog returns the recorded entries newest first. Keys that are
// not YYYY-MM-DD dates are skipped.
func AttendanceLog(e Employee) []DatedEntry {
	out := make([]DatedEntry, 0, len(e.Attendance))
	for key, entry := range e.Attendance {
		day, err := generic.ParseDate(key)
		if err != nil {
			continue
		}
		out = append(out, DatedEntry{Date: day, AttendanceEntry: entry})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
