package employee

import (
	"context"

	"github.com/shopspring/decimal"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByIDForUpdate locks the employee row for the rest of the transaction.
	// Attendance and payroll writes for one employee serialize on this lock.
	GetByIDForUpdate(ctx context.Context, id string) (Employee, error)
	GetStoreSettings(ctx context.Context, storeID string) (StoreSettings, error)
	AddAdvance(ctx context.Context, id string, amount decimal.Decimal) error
	ResetAdvances(ctx context.Context, id string) error
}
