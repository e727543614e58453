package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

// GetActiveAssignment implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetActiveAssignment(ctx context.Context, employeeID string, date time.Time) (*shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT sa.id, sa.employee_id, sa.shift_id, sa.start_date, sa.end_date, sa.created_at,
			   s.id, s.store_id, s.name, s.start_time, s.end_time,
			   s.grace_minutes, s.penalty_per_15_min, s.created_at, s.updated_at
		FROM shift_assignments sa
		JOIN shifts s ON s.id = sa.shift_id
		WHERE sa.employee_id = $1
		  AND sa.start_date <= $2
		  AND (sa.end_date IS NULL OR sa.end_date >= $2)
		ORDER BY sa.start_date DESC, sa.created_at DESC
		LIMIT 1
	`

	var (
		a         shift.Assignment
		startTime pgtype.Time
		endTime   pgtype.Time
	)
	err := q.QueryRow(ctx, query, employeeID, date).Scan(
		&a.ID, &a.EmployeeID, &a.ShiftID, &a.StartDate, &a.EndDate, &a.CreatedAt,
		&a.Shift.ID, &a.Shift.StoreID, &a.Shift.Name, &startTime, &endTime,
		&a.Shift.GraceMinutes, &a.Shift.PenaltyPer15Min, &a.Shift.CreatedAt, &a.Shift.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active shift assignment: %w", err)
	}

	a.Shift.StartTime = clock.TimeOfDayFromMicroseconds(startTime.Microseconds)
	a.Shift.EndTime = timeOfDayOrNil(endTime)
	return &a, nil
}
