package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/shift"
	"github.com/shopspring/decimal"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	e, ok := r.store.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// GetByIDForUpdate needs no row lock: memory transactions already run one at a time.
func (r *employeeRepository) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return r.GetByID(ctx, id)
}

func (r *employeeRepository) GetStoreSettings(ctx context.Context, storeID string) (employee.StoreSettings, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.settings[storeID]
	if !ok {
		return employee.StoreSettings{}, employee.ErrStoreSettingsNotFound
	}
	return s, nil
}

func (r *employeeRepository) AddAdvance(ctx context.Context, id string, amount decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.Advances = e.Advances.Add(amount)
	r.store.employees[id] = e
	return nil
}

func (r *employeeRepository) ResetAdvances(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.Advances = decimal.Zero
	r.store.employees[id] = e
	return nil
}

type shiftRepository struct {
	store *Store
}

func NewShiftRepository(store *Store) shift.ShiftRepository {
	return &shiftRepository{store: store}
}

func (r *shiftRepository) GetActiveAssignment(ctx context.Context, employeeID string, date time.Time) (*shift.Assignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var active []shift.Assignment
	for _, a := range r.store.assignments {
		if a.EmployeeID == employeeID && a.Covers(date) {
			active = append(active, a)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].StartDate.After(active[j].StartDate)
	})
	return &active[0], nil
}
