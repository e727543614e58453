package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
)

type payrollRepository struct {
	store *Store
}

func NewPayrollRepository(store *Store) payroll.PayrollRepository {
	return &payrollRepository{store: store}
}

func (r *payrollRepository) withEmployeeName(p payroll.Period) payroll.Period {
	if e, ok := r.store.employees[p.EmployeeID]; ok {
		name := e.FullName
		p.EmployeeName = &name
	}
	return p
}

func (r *payrollRepository) Create(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range r.store.payrolls {
		if p.EmployeeID == period.EmployeeID && p.Month.Equal(period.Month) {
			return payroll.Period{}, payroll.ErrPayrollAlreadyExists
		}
	}
	if period.ID == "" {
		period.ID = newID()
	}
	now := time.Now()
	period.CreatedAt = now
	period.UpdatedAt = now
	r.store.payrolls[period.ID] = period
	return r.withEmployeeName(period), nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Period, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.payrolls[id]
	if !ok {
		return payroll.Period{}, payroll.ErrPayrollNotFound
	}
	return r.withEmployeeName(p), nil
}

func (r *payrollRepository) GetByIDForUpdate(ctx context.Context, id string) (payroll.Period, error) {
	return r.GetByID(ctx, id)
}

func (r *payrollRepository) GetByEmployeeMonth(ctx context.Context, employeeID string, month time.Time) (payroll.Period, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.payrolls {
		if p.EmployeeID == employeeID && p.Month.Equal(month) {
			return r.withEmployeeName(p), nil
		}
	}
	return payroll.Period{}, payroll.ErrPayrollNotFound
}

func (r *payrollRepository) GetByEmployeeMonthForUpdate(ctx context.Context, employeeID string, month time.Time) (payroll.Period, error) {
	return r.GetByEmployeeMonth(ctx, employeeID, month)
}

func (r *payrollRepository) ListByEmployee(ctx context.Context, employeeID string) ([]payroll.Period, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []payroll.Period
	for _, p := range r.store.payrolls {
		if p.EmployeeID == employeeID {
			out = append(out, r.withEmployeeName(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.After(out[j].Month)
	})
	return out, nil
}

func (r *payrollRepository) Update(ctx context.Context, period payroll.Period) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.payrolls[period.ID]; !ok {
		return payroll.ErrPayrollNotFound
	}
	period.UpdatedAt = time.Now()
	period.EmployeeName = nil
	r.store.payrolls[period.ID] = period
	return nil
}

func (r *payrollRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.payrolls[id]; !ok {
		return payroll.ErrPayrollNotFound
	}
	delete(r.store.payrolls, id)
	return nil
}
