package shift

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type Shift struct {
	ID              string
	StoreID         string
	Name            string
	StartTime       clock.TimeOfDay
	EndTime         *clock.TimeOfDay
	GraceMinutes    int
	PenaltyPer15Min decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Assignment binds an employee to a shift from StartDate, open-ended when
// EndDate is nil.
type Assignment struct {
	ID         string
	EmployeeID string
	ShiftID    string
	StartDate  time.Time
	EndDate    *time.Time
	CreatedAt  time.Time

	// Joined
	Shift Shift
}

// Covers reports whether the assignment is in force on date.
func (a Assignment) Covers(date time.Time) bool {
	if date.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || !a.EndDate.Before(date)
}

// Source names the rule a Window was taken from.
type Source string

const (
	SourceAssignment      Source = "assignment"
	SourceEmployeeDefault Source = "employee_default"
	SourceStoreDefault    Source = "store_default"
)

// Window is the effective lateness rule for one employee on one day.
type Window struct {
	StartTime       clock.TimeOfDay
	GraceMinutes    int
	PenaltyPer15Min decimal.Decimal
	Source          Source
}

// Deadline is the last instant on workDate that still counts as on time.
func (w Window) Deadline(workDate time.Time, loc *time.Location) time.Time {
	return w.StartTime.On(workDate, loc).Add(time.Duration(w.GraceMinutes) * time.Minute)
}
