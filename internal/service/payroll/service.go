package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
)

type PayrollServiceImpl struct {
	tx           database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	sessionRepo  attendance.SessionRepository
	ledgerRepo   ledger.LedgerRepository
	notifService notification.Service
	clock        clock.Clock
	defaultLoc   *time.Location
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	sessionRepo attendance.SessionRepository,
	ledgerRepo ledger.LedgerRepository,
	notifService notification.Service,
	clk clock.Clock,
	defaultLoc *time.Location,
) payroll.PayrollService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		sessionRepo:  sessionRepo,
		ledgerRepo:   ledgerRepo,
		notifService: notifService,
		clock:        clk,
		defaultLoc:   defaultLoc,
	}
}

func (s *PayrollServiceImpl) location(emp employee.Employee) *time.Location {
	return clock.LoadLocation(emp.Timezone, s.defaultLoc)
}

// ========== GENERATE ==========

// Generate creates or recomputes the employee's period for a month. A paid
// period is returned as stored.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}
	month, err := payroll.ParsePeriodMonth(req.Month)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	var period payroll.Period
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		emp, err := s.employeeRepo.GetByIDForUpdate(txCtx, req.EmployeeID)
		if err != nil {
			return err
		}

		existing, err := s.payrollRepo.GetByEmployeeMonthForUpdate(txCtx, emp.ID, month)
		found := err == nil
		if err != nil && !errors.Is(err, payroll.ErrPayrollNotFound) {
			return fmt.Errorf("failed to get payroll period: %w", err)
		}

		if found && existing.Frozen() {
			period = existing
			return nil
		}

		var payrollID *string
		if found {
			payrollID = &existing.ID
		}
		computed, err := s.compute(txCtx, emp, month, payrollID)
		if err != nil {
			return err
		}

		if !found {
			period, err = s.payrollRepo.Create(txCtx, computed)
			if err != nil {
				return fmt.Errorf("failed to create payroll period: %w", err)
			}
			return nil
		}

		computed.ID = existing.ID
		computed.CreatedAt = existing.CreatedAt
		computed.EmployeeName = existing.EmployeeName
		if err := s.payrollRepo.Update(txCtx, computed); err != nil {
			return fmt.Errorf("failed to update payroll period: %w", err)
		}
		period = computed
		return nil
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	slog.Info("payroll generated",
		"employee_id", period.EmployeeID,
		"month", period.Month.Format(clock.MonthLayout),
		"attendance_days", period.AttendanceDays,
		"net_salary", period.NetSalary.String(),
		"is_paid", period.IsPaid,
	)

	return payroll.NewPeriodResponse(period), nil
}

// compute aggregates a month of sessions and unarchived ledger adjustments
// into an unsaved period. payrollID also admits entries already archived to
// that period.
func (s *PayrollServiceImpl) compute(ctx context.Context, emp employee.Employee, month time.Time, payrollID *string) (payroll.Period, error) {
	loc := s.location(emp)

	sessions, err := s.sessionRepo.ListByCheckInRange(ctx, emp.ID,
		clock.StartOfDay(month, loc),
		clock.StartOfDay(clock.NextMonth(month), loc),
	)
	if err != nil {
		return payroll.Period{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	summary := attendance.Summarize(sessions)

	salary := emp.Salary()
	if !salary.IsPositive() && summary.AttendanceDays > 0 {
		return payroll.Period{}, payroll.ErrEmployeeHasNoSalary
	}

	adjustments, err := s.ledgerRepo.ListUnarchivedAdjustments(ctx, emp.ID, month, clock.MonthEnd(month), payrollID)
	if err != nil {
		return payroll.Period{}, fmt.Errorf("failed to list ledger adjustments: %w", err)
	}
	totals := ledger.Sum(adjustments)

	period := payroll.Period{
		EmployeeID:       emp.ID,
		Month:            month,
		MonthlySalary:    salary,
		AttendanceDays:   summary.AttendanceDays,
		TotalWorkMinutes: summary.TotalWorkMinutes,
		TotalLateMinutes: summary.TotalLateMinutes,
		BaseSalary:       payroll.EarnedBase(salary, summary.AttendanceDays),
		Penalties:        totals.Penalties,
		LatePenalties:    summary.LatePenalties,
		Bonuses:          totals.Bonuses,
		Advances:         totals.Advances,
		EmployeeName:     &emp.FullName,
	}
	period.CalculateNetSalary()
	return period, nil
}

// ========== MARK PAID ==========

// MarkPaid freezes a period, archives the month's adjustments to it, books
// the SALARY entry and clears the employee's advances, all in one transaction.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, req payroll.MarkPaidRequest) (payroll.MarkPaidResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.MarkPaidResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.MarkPaidResponse{}, err
	}
	today := clock.DateOf(s.clock.Now(), s.location(emp))

	paidDate := today
	if req.PaidDate != nil {
		paidDate, err = clock.ParseDate(*req.PaidDate)
		if err != nil {
			return payroll.MarkPaidResponse{}, err
		}
	}

	var (
		period   payroll.Period
		salary   ledger.Entry
		archived int64
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.employeeRepo.GetByIDForUpdate(txCtx, emp.ID); err != nil {
			return err
		}

		period, err = s.lockTarget(txCtx, emp.ID, req, today)
		if err != nil {
			return err
		}
		if period.Frozen() {
			return payroll.ErrPayrollAlreadyPaid
		}

		// Components stay as generated or adjusted; only the net is recomputed.
		period.CalculateNetSalary()

		paidBy := req.PaidBy
		period.IsPaid = true
		period.IsLocked = true
		period.PaidAt = &paidDate
		if paidBy != "" {
			period.PaidBy = &paidBy
		}

		archived, err = s.ledgerRepo.Archive(txCtx, emp.ID, period.ID, period.Month, clock.MonthEnd(period.Month))
		if err != nil {
			return fmt.Errorf("failed to archive ledger entries: %w", err)
		}

		payrollID := period.ID
		salary, _, err = s.ledgerRepo.GetOrCreateSalary(txCtx, ledger.Entry{
			EmployeeID:  emp.ID,
			PayrollID:   &payrollID,
			EntryType:   ledger.EntryTypeSalary,
			Amount:      period.NetSalary,
			PayoutDate:  paidDate,
			Description: "Salary paid for " + period.Month.Format(clock.MonthLayout),
		})
		if err != nil {
			return fmt.Errorf("failed to create salary entry: %w", err)
		}

		if err := s.employeeRepo.ResetAdvances(txCtx, emp.ID); err != nil {
			return fmt.Errorf("failed to reset advances: %w", err)
		}

		if err := s.payrollRepo.Update(txCtx, period); err != nil {
			return fmt.Errorf("failed to update payroll period: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.MarkPaidResponse{}, err
	}

	slog.Info("payroll marked paid",
		"employee_id", emp.ID,
		"payroll_id", period.ID,
		"month", period.Month.Format(clock.MonthLayout),
		"net_salary", period.NetSalary.String(),
		"archived_entries", archived,
	)

	if s.notifService != nil && emp.UserID != nil {
		notifErr := s.notifService.QueueNotification(context.WithoutCancel(ctx), notification.CreateNotificationRequest{
			StoreID:     emp.StoreID,
			RecipientID: *emp.UserID,
			Type:        notification.TypePayrollPaid,
			Title:       "Salary Paid",
			Message:     fmt.Sprintf("Your salary for %s of %s has been paid", period.Month.Format(clock.MonthLayout), period.NetSalary.StringFixed(2)),
			Data: map[string]interface{}{
				"payroll_id": period.ID,
				"month":      period.Month.Format(clock.MonthLayout),
			},
		})
		if notifErr != nil {
			slog.Warn("failed to queue payroll notification", "employee_id", emp.ID, "error", notifErr)
		}
	}

	return payroll.MarkPaidResponse{
		Payroll:         payroll.NewPeriodResponse(period),
		SalaryEntryID:   salary.ID,
		ArchivedEntries: archived,
	}, nil
}

// lockTarget resolves the period to pay: by id, else by month, else the
// current month.
func (s *PayrollServiceImpl) lockTarget(ctx context.Context, employeeID string, req payroll.MarkPaidRequest, today time.Time) (payroll.Period, error) {
	if req.PayrollID != nil && *req.PayrollID != "" {
		period, err := s.payrollRepo.GetByIDForUpdate(ctx, *req.PayrollID)
		if err != nil {
			return payroll.Period{}, err
		}
		if period.EmployeeID != employeeID {
			return payroll.Period{}, payroll.ErrPayrollEmployeeMismatch
		}
		return period, nil
	}

	month := clock.MonthStart(today)
	if req.Month != nil && *req.Month != "" {
		parsed, err := payroll.ParsePeriodMonth(*req.Month)
		if err != nil {
			return payroll.Period{}, err
		}
		month = parsed
	}
	return s.payrollRepo.GetByEmployeeMonthForUpdate(ctx, employeeID, month)
}

// ========== READ / MAINTENANCE ==========

func (s *PayrollServiceImpl) List(ctx context.Context, employeeID string) ([]payroll.PeriodResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	periods, err := s.payrollRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}

	resp := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		resp = append(resp, payroll.NewPeriodResponse(p))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) Get(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	period, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(period), nil
}

// Update overrides components of an unpaid period and recomputes net salary.
// A new monthly salary also re-derives the earned base unless one is given.
func (s *PayrollServiceImpl) Update(ctx context.Context, req payroll.UpdatePayrollRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	var period payroll.Period
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		period, err = s.payrollRepo.GetByIDForUpdate(txCtx, req.ID)
		if err != nil {
			return err
		}
		if period.Frozen() {
			return payroll.ErrPayrollAlreadyPaid
		}

		if req.MonthlySalary != nil {
			period.MonthlySalary = *req.MonthlySalary
			period.BaseSalary = payroll.EarnedBase(period.MonthlySalary, period.AttendanceDays)
		}
		if req.BaseSalary != nil {
			period.BaseSalary = *req.BaseSalary
		}
		if req.Bonuses != nil {
			period.Bonuses = *req.Bonuses
		}
		if req.Penalties != nil {
			period.Penalties = *req.Penalties
		}
		if req.LatePenalties != nil {
			period.LatePenalties = *req.LatePenalties
		}
		if req.Advances != nil {
			period.Advances = *req.Advances
		}
		period.CalculateNetSalary()

		if err := s.payrollRepo.Update(txCtx, period); err != nil {
			return fmt.Errorf("failed to update payroll period: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) Delete(ctx context.Context, id string) error {
	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		period, err := s.payrollRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if period.Frozen() {
			return payroll.ErrPayrollAlreadyPaid
		}
		return s.payrollRepo.Delete(txCtx, id)
	})
}
