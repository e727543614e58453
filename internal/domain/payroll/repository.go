package payroll

import (
	"context"
	"time"
)

type PayrollRepository interface {
	Create(ctx context.Context, period Period) (Period, error)
	GetByID(ctx context.Context, id string) (Period, error)
	GetByIDForUpdate(ctx context.Context, id string) (Period, error)
	// GetByEmployeeMonthForUpdate locks the (employee, month) row if present.
	GetByEmployeeMonthForUpdate(ctx context.Context, employeeID string, month time.Time) (Period, error)
	GetByEmployeeMonth(ctx context.Context, employeeID string, month time.Time) (Period, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Period, error)
	Update(ctx context.Context, period Period) error
	Delete(ctx context.Context, id string) error
}
