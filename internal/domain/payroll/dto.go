package payroll

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ParsePeriodMonth accepts "YYYY-MM" or "YYYY-MM-DD" and returns the first of that month.
func ParsePeriodMonth(s string) (time.Time, error) {
	if m, err := clock.ParseMonth(s); err == nil {
		return m, nil
	}
	if d, err := clock.ParseDate(s); err == nil {
		return clock.MonthStart(d), nil
	}
	return time.Time{}, ErrInvalidPeriod
}

// ========== GENERATE ==========

type GeneratePayrollRequest struct {
	EmployeeID string `json:"-"`
	Month      string `json:"month"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month is required",
		})
	} else if _, err := ParsePeriodMonth(r.Month); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM or YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========== MARK PAID ==========

// MarkPaidRequest targets a period by PayrollID, else by Month, else the
// current month.
type MarkPaidRequest struct {
	EmployeeID string  `json:"-"`
	PaidBy     string  `json:"-"`
	PayrollID  *string `json:"payroll_id,omitempty"`
	Month      *string `json:"month,omitempty"`
	PaidDate   *string `json:"paid_date,omitempty"` // YYYY-MM-DD, today when empty
}

func (r *MarkPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Month != nil && r.PayrollID == nil {
		if _, err := ParsePeriodMonth(*r.Month); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be in YYYY-MM or YYYY-MM-DD format",
			})
		}
	}

	if r.PaidDate != nil {
		if _, ok := validator.IsValidDate(*r.PaidDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "paid_date",
				Message: "paid_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MarkPaidResponse struct {
	Payroll         PeriodResponse `json:"payroll"`
	SalaryEntryID   string         `json:"salary_entry_id"`
	ArchivedEntries int64          `json:"archived_entries"`
}

// ========== UPDATE ==========

// UpdatePayrollRequest overrides components of an unpaid period. Net salary
// is always recomputed.
type UpdatePayrollRequest struct {
	ID            string           `json:"-"`
	MonthlySalary *decimal.Decimal `json:"monthly_salary,omitempty"`
	BaseSalary    *decimal.Decimal `json:"base_salary,omitempty"`
	Bonuses       *decimal.Decimal `json:"bonuses,omitempty"`
	Penalties     *decimal.Decimal `json:"penalties,omitempty"`
	LatePenalties *decimal.Decimal `json:"late_penalties,omitempty"`
	Advances      *decimal.Decimal `json:"advances,omitempty"`
}

func (r *UpdatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.MonthlySalary != nil && !r.MonthlySalary.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "monthly_salary",
			Message: ErrMonthlySalaryNotPositive.Error(),
		})
	}

	amounts := map[string]*decimal.Decimal{
		"base_salary":    r.BaseSalary,
		"bonuses":        r.Bonuses,
		"penalties":      r.Penalties,
		"late_penalties": r.LatePenalties,
		"advances":       r.Advances,
	}
	for field, v := range amounts {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " cannot be negative",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========== RESPONSES ==========

type PeriodResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     *string         `json:"employee_name,omitempty"`
	Month            string          `json:"month"`
	MonthlySalary    decimal.Decimal `json:"monthly_salary"`
	AttendanceDays   int             `json:"attendance_days"`
	TotalWorkMinutes int             `json:"total_work_minutes"`
	TotalLateMinutes int             `json:"total_late_minutes"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
	Penalties        decimal.Decimal `json:"penalties"`
	LatePenalties    decimal.Decimal `json:"late_penalties"`
	Bonuses          decimal.Decimal `json:"bonuses"`
	Advances         decimal.Decimal `json:"advances"`
	NetSalary        decimal.Decimal `json:"net_salary"`
	IsPaid           bool            `json:"is_paid"`
	IsLocked         bool            `json:"is_locked"`
	PaidAt           *string         `json:"paid_at,omitempty"`
	PaidBy           *string         `json:"paid_by,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func NewPeriodResponse(p Period) PeriodResponse {
	var paidAt *string
	if p.PaidAt != nil {
		s := p.PaidAt.Format(clock.DateLayout)
		paidAt = &s
	}
	return PeriodResponse{
		ID:               p.ID,
		EmployeeID:       p.EmployeeID,
		EmployeeName:     p.EmployeeName,
		Month:            p.Month.Format(clock.MonthLayout),
		MonthlySalary:    p.MonthlySalary,
		AttendanceDays:   p.AttendanceDays,
		TotalWorkMinutes: p.TotalWorkMinutes,
		TotalLateMinutes: p.TotalLateMinutes,
		BaseSalary:       p.BaseSalary,
		Penalties:        p.Penalties,
		LatePenalties:    p.LatePenalties,
		Bonuses:          p.Bonuses,
		Advances:         p.Advances,
		NetSalary:        p.NetSalary,
		IsPaid:           p.IsPaid,
		IsLocked:         p.IsLocked,
		PaidAt:           paidAt,
		PaidBy:           p.PaidBy,
		UpdatedAt:        p.UpdatedAt,
	}
}
