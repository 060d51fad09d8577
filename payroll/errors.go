package payroll

import (
	"errors"
	"fmt"

	"github.com/warp/payroll-engine/generic"
)

var (
	// ErrEmployeeNotFound is returned when an employee ID is unknown.
	ErrEmployeeNotFound = fmt.Errorf("employee %w", generic.ErrNotFound)

	// ErrSalaryUnchanged is returned when a new rate equals the current one.
	ErrSalaryUnchanged = fmt.Errorf("salary unchanged: %w", generic.ErrConflict)

	// ErrInvalidAmount is returned for negative or non-finite amounts.
	ErrInvalidAmount = &generic.FieldError{Field: "amount", Message: "must be a non-negative number"}

	// ErrDetailsRequired is returned when a Half Done day has no details.
	ErrDetailsRequired = &generic.FieldError{Field: "details", Message: "required when status is Half Done"}
)

// IsUnchanged reports whether err is ErrSalaryUnchanged.
func IsUnchanged(err error) bool {
	return errors.Is(err, ErrSalaryUnchanged)
}
