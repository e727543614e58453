package payroll

import "errors"

var (
	ErrPayrollNotFound          = errors.New("payroll period not found")
	ErrPayrollAlreadyPaid       = errors.New("payroll period already paid, cannot modify")
	ErrPayrollAlreadyExists     = errors.New("payroll period already exists for this month")
	ErrEmployeeHasNoSalary      = errors.New("employee has no monthly salary configured but attended this month")
	ErrInvalidPeriod            = errors.New("invalid payroll month, use YYYY-MM")
	ErrPayrollEmployeeMismatch  = errors.New("payroll period does not belong to this employee")
	ErrNegativeAmount           = errors.New("amounts cannot be negative")
	ErrMonthlySalaryNotPositive = errors.New("monthly_salary must be greater than zero")
)
