package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeSelect = `
	SELECT e.id, e.store_id, e.branch_id, e.user_id, e.full_name,
		   e.monthly_salary, e.shift_start_time, e.advances,
		   e.created_at, e.updated_at,
		   b.penalty_per_15_min, s.timezone
	FROM employees e
	JOIN stores s ON s.id = e.store_id
	LEFT JOIN branches b ON b.id = e.branch_id
	WHERE e.id = $1
`

func timeOfDayOrNil(t pgtype.Time) *clock.TimeOfDay {
	if !t.Valid {
		return nil
	}
	tod := clock.TimeOfDayFromMicroseconds(t.Microseconds)
	return &tod
}

func decimalOrNil(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}

func (r *employeeRepositoryImpl) get(ctx context.Context, query, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	var (
		emp           employee.Employee
		salary        decimal.NullDecimal
		startTime     pgtype.Time
		branchPenalty decimal.NullDecimal
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&emp.ID, &emp.StoreID, &emp.BranchID, &emp.UserID, &emp.FullName,
		&salary, &startTime, &emp.Advances,
		&emp.CreatedAt, &emp.UpdatedAt,
		&branchPenalty, &emp.Timezone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee %s: %w", id, err)
	}

	emp.MonthlySalary = decimalOrNil(salary)
	emp.ShiftStartTime = timeOfDayOrNil(startTime)
	emp.BranchPenaltyPer15Min = decimalOrNil(branchPenalty)
	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.get(ctx, employeeSelect, id)
}

// GetByIDForUpdate implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return r.get(ctx, employeeSelect+` FOR UPDATE OF e`, id)
}

// GetStoreSettings implements employee.EmployeeRepository. Empty grace and
// penalty columns read as zero.
func (r *employeeRepositoryImpl) GetStoreSettings(ctx context.Context, storeID string) (employee.StoreSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, shift_start_time, grace_minutes, penalty_per_15_min,
			   late_notification_enabled, notification_numbers
		FROM stores
		WHERE id = $1
	`

	var (
		settings  employee.StoreSettings
		startTime pgtype.Time
		grace     *int
		penalty   decimal.NullDecimal
	)
	err := q.QueryRow(ctx, query, storeID).Scan(
		&settings.StoreID, &startTime, &grace, &penalty,
		&settings.LateNotificationEnabled, &settings.NotificationNumbers,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.StoreSettings{}, employee.ErrStoreSettingsNotFound
		}
		return employee.StoreSettings{}, fmt.Errorf("failed to get store settings: %w", err)
	}

	settings.ShiftStartTime = timeOfDayOrNil(startTime)
	if grace != nil {
		settings.GraceMinutes = *grace
	}
	settings.PenaltyPer15Min = decimal.Zero
	if penalty.Valid {
		settings.PenaltyPer15Min = penalty.Decimal
	}
	return settings, nil
}

// AddAdvance implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) AddAdvance(ctx context.Context, id string, amount decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET advances = advances + $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to add advance for employee %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// ResetAdvances implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ResetAdvances(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET advances = 0, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to reset advances for employee %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
