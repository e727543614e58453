package shift

import (
	"context"
	"time"
)

type ShiftRepository interface {
	// GetActiveAssignment returns the assignment in force on date with the
	// latest start date, or nil when none applies.
	GetActiveAssignment(ctx context.Context, employeeID string, date time.Time) (*Assignment, error)
}
