package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollSelect = `
	SELECT p.id, p.employee_id, p.month, p.monthly_salary,
		   p.attendance_days, p.total_work_minutes, p.total_late_minutes,
		   p.base_salary, p.penalties, p.late_penalties, p.bonuses, p.advances, p.net_salary,
		   p.is_paid, p.is_locked, p.paid_at, p.paid_by,
		   p.created_at, p.updated_at,
		   e.full_name
	FROM payroll_periods p
	JOIN employees e ON e.id = p.employee_id
`

func scanPeriod(row pgx.Row) (payroll.Period, error) {
	var p payroll.Period
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.Month, &p.MonthlySalary,
		&p.AttendanceDays, &p.TotalWorkMinutes, &p.TotalLateMinutes,
		&p.BaseSalary, &p.Penalties, &p.LatePenalties, &p.Bonuses, &p.Advances, &p.NetSalary,
		&p.IsPaid, &p.IsLocked, &p.PaidAt, &p.PaidBy,
		&p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName,
	)
	return p, err
}

func (r *payrollRepository) getOne(ctx context.Context, query string, args ...any) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPeriod(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPayrollNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to get payroll period: %w", err)
	}
	return p, nil
}

// ========== READ ==========

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Period, error) {
	return r.getOne(ctx, payrollSelect+` WHERE p.id = $1`, id)
}

func (r *payrollRepository) GetByIDForUpdate(ctx context.Context, id string) (payroll.Period, error) {
	return r.getOne(ctx, payrollSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id)
}

func (r *payrollRepository) GetByEmployeeMonth(ctx context.Context, employeeID string, month time.Time) (payroll.Period, error) {
	return r.getOne(ctx, payrollSelect+` WHERE p.employee_id = $1 AND p.month = $2`, employeeID, month)
}

func (r *payrollRepository) GetByEmployeeMonthForUpdate(ctx context.Context, employeeID string, month time.Time) (payroll.Period, error) {
	return r.getOne(ctx, payrollSelect+` WHERE p.employee_id = $1 AND p.month = $2 FOR UPDATE OF p`, employeeID, month)
}

func (r *payrollRepository) ListByEmployee(ctx context.Context, employeeID string) ([]payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, payrollSelect+` WHERE p.employee_id = $1 ORDER BY p.month DESC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return periods, nil
}

// ========== WRITE ==========

func (r *payrollRepository) Create(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (
			employee_id, month, monthly_salary,
			attendance_days, total_work_minutes, total_late_minutes,
			base_salary, penalties, late_penalties, bonuses, advances, net_salary,
			is_paid, is_locked, paid_at, paid_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		period.EmployeeID, period.Month, period.MonthlySalary,
		period.AttendanceDays, period.TotalWorkMinutes, period.TotalLateMinutes,
		period.BaseSalary, period.Penalties, period.LatePenalties, period.Bonuses, period.Advances, period.NetSalary,
		period.IsPaid, period.IsLocked, period.PaidAt, period.PaidBy,
	).Scan(&period.ID, &period.CreatedAt, &period.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_payroll_periods_employee_month") {
			return payroll.Period{}, payroll.ErrPayrollAlreadyExists
		}
		return payroll.Period{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return period, nil
}

func (r *payrollRepository) Update(ctx context.Context, period payroll.Period) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods SET
			monthly_salary = $1,
			attendance_days = $2,
			total_work_minutes = $3,
			total_late_minutes = $4,
			base_salary = $5,
			penalties = $6,
			late_penalties = $7,
			bonuses = $8,
			advances = $9,
			net_salary = $10,
			is_paid = $11,
			is_locked = $12,
			paid_at = $13,
			paid_by = $14,
			updated_at = NOW()
		WHERE id = $15
	`

	tag, err := q.Exec(ctx, query,
		period.MonthlySalary,
		period.AttendanceDays, period.TotalWorkMinutes, period.TotalLateMinutes,
		period.BaseSalary, period.Penalties, period.LatePenalties, period.Bonuses, period.Advances, period.NetSalary,
		period.IsPaid, period.IsLocked, period.PaidAt, period.PaidBy,
		period.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func (r *payrollRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}
