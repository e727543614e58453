package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysPerMonth is the fixed divisor for the daily rate, independent of the
// actual length of the month.
const DaysPerMonth = 30

// Period is one employee's payroll for one calendar month. It is recomputed
// freely until paid and frozen afterwards.
type Period struct {
	ID               string
	EmployeeID       string
	Month            time.Time // first day of month
	MonthlySalary    decimal.Decimal
	AttendanceDays   int
	TotalWorkMinutes int
	TotalLateMinutes int
	BaseSalary       decimal.Decimal
	Penalties        decimal.Decimal
	LatePenalties    decimal.Decimal
	Bonuses          decimal.Decimal
	Advances         decimal.Decimal
	NetSalary        decimal.Decimal
	IsPaid           bool
	IsLocked         bool
	PaidAt           *time.Time
	PaidBy           *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	EmployeeName *string
}

// Frozen reports whether the period may no longer change.
func (p Period) Frozen() bool {
	return p.IsPaid || p.IsLocked
}

// DailyRate is the monthly salary over DaysPerMonth.
func DailyRate(monthlySalary decimal.Decimal) decimal.Decimal {
	return monthlySalary.Div(decimal.NewFromInt(DaysPerMonth))
}

// EarnedBase is attendance days times the daily rate, rounded to cents.
func EarnedBase(monthlySalary decimal.Decimal, attendanceDays int) decimal.Decimal {
	return DailyRate(monthlySalary).Mul(decimal.NewFromInt(int64(attendanceDays))).Round(2)
}

// CalculateNetSalary sets NetSalary from the stored components, never below zero.
func (p *Period) CalculateNetSalary() {
	net := p.BaseSalary.
		Add(p.Bonuses).
		Sub(p.Penalties).
		Sub(p.LatePenalties).
		Sub(p.Advances)
	if net.IsNegative() {
		net = decimal.Zero
	}
	p.NetSalary = net
}
