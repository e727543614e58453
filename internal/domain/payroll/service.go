package payroll

import "context"

type PayrollService interface {
	Generate(ctx context.Context, req GeneratePayrollRequest) (PeriodResponse, error)
	MarkPaid(ctx context.Context, req MarkPaidRequest) (MarkPaidResponse, error)
	List(ctx context.Context, employeeID string) ([]PeriodResponse, error)
	Get(ctx context.Context, id string) (PeriodResponse, error)
	Update(ctx context.Context, req UpdatePayrollRequest) (PeriodResponse, error)
	Delete(ctx context.Context, id string) error
}
