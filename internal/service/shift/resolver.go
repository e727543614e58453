package shift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/shift"
	"github.com/shopspring/decimal"
)

// Strategy is one rule source. It returns nil when it does not apply so the
// next strategy is consulted.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, emp employee.Employee, workDate time.Time) (*shift.Window, error)
}

type ResolverImpl struct {
	strategies []Strategy
}

// NewResolver checks, in order: the shift assignment active on the day, the
// employee's own start time, the store defaults.
func NewResolver(shiftRepo shift.ShiftRepository, employeeRepo employee.EmployeeRepository) shift.Resolver {
	return NewResolverWithStrategies(
		&assignmentStrategy{shiftRepo: shiftRepo},
		&employeeDefaultStrategy{employeeRepo: employeeRepo},
		&storeDefaultStrategy{employeeRepo: employeeRepo},
	)
}

func NewResolverWithStrategies(strategies ...Strategy) *ResolverImpl {
	return &ResolverImpl{strategies: strategies}
}

// Resolve implements shift.Resolver. The first strategy returning a window wins.
func (r *ResolverImpl) Resolve(ctx context.Context, emp employee.Employee, workDate time.Time) (*shift.Window, error) {
	for _, s := range r.strategies {
		window, err := s.Resolve(ctx, emp, workDate)
		if err != nil {
			return nil, fmt.Errorf("resolve shift via %s: %w", s.Name(), err)
		}
		if window != nil {
			return window, nil
		}
	}
	return nil, nil
}

// ========== STRATEGIES ==========

type assignmentStrategy struct {
	shiftRepo shift.ShiftRepository
}

func (s *assignmentStrategy) Name() string { return string(shift.SourceAssignment) }

func (s *assignmentStrategy) Resolve(ctx context.Context, emp employee.Employee, workDate time.Time) (*shift.Window, error) {
	assignment, err := s.shiftRepo.GetActiveAssignment(ctx, emp.ID, workDate)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, nil
	}
	return &shift.Window{
		StartTime:       assignment.Shift.StartTime,
		GraceMinutes:    assignment.Shift.GraceMinutes,
		PenaltyPer15Min: assignment.Shift.PenaltyPer15Min,
		Source:          shift.SourceAssignment,
	}, nil
}

type employeeDefaultStrategy struct {
	employeeRepo employee.EmployeeRepository
}

func (s *employeeDefaultStrategy) Name() string { return string(shift.SourceEmployeeDefault) }

// Resolve uses the employee's start time with the store grace period. The
// penalty rate comes from the branch override, then the store, then zero.
func (s *employeeDefaultStrategy) Resolve(ctx context.Context, emp employee.Employee, _ time.Time) (*shift.Window, error) {
	if emp.ShiftStartTime == nil {
		return nil, nil
	}

	settings, found, err := storeSettings(ctx, s.employeeRepo, emp.StoreID)
	if err != nil {
		return nil, err
	}

	window := &shift.Window{
		StartTime:       *emp.ShiftStartTime,
		PenaltyPer15Min: decimal.Zero,
		Source:          shift.SourceEmployeeDefault,
	}
	if found {
		window.GraceMinutes = settings.GraceMinutes
		window.PenaltyPer15Min = settings.PenaltyPer15Min
	}
	if emp.BranchPenaltyPer15Min != nil {
		window.PenaltyPer15Min = *emp.BranchPenaltyPer15Min
	}
	return window, nil
}

type storeDefaultStrategy struct {
	employeeRepo employee.EmployeeRepository
}

func (s *storeDefaultStrategy) Name() string { return string(shift.SourceStoreDefault) }

func (s *storeDefaultStrategy) Resolve(ctx context.Context, emp employee.Employee, _ time.Time) (*shift.Window, error) {
	settings, found, err := storeSettings(ctx, s.employeeRepo, emp.StoreID)
	if err != nil {
		return nil, err
	}
	if !found || settings.ShiftStartTime == nil {
		return nil, nil
	}
	return &shift.Window{
		StartTime:       *settings.ShiftStartTime,
		GraceMinutes:    settings.GraceMinutes,
		PenaltyPer15Min: settings.PenaltyPer15Min,
		Source:          shift.SourceStoreDefault,
	}, nil
}

func storeSettings(ctx context.Context, repo employee.EmployeeRepository, storeID string) (employee.StoreSettings, bool, error) {
	settings, err := repo.GetStoreSettings(ctx, storeID)
	if err != nil {
		if errors.Is(err, employee.ErrStoreSettingsNotFound) {
			return employee.StoreSettings{}, false, nil
		}
		return employee.StoreSettings{}, false, err
	}
	return settings, true, nil
}
