package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type sessionRepositoryImpl struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) attendance.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

const sessionColumns = `
	id, employee_id, check_in, check_out, work_date, method,
	location, check_out_location, ip_address, user_agent,
	is_late, late_minutes, penalty_applied, duration_minutes,
	created_at, updated_at
`

func scanSession(row pgx.Row) (attendance.Session, error) {
	var s attendance.Session
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.CheckIn, &s.CheckOut, &s.WorkDate, &s.Method,
		&s.Location, &s.CheckOutLocation, &s.IPAddress, &s.UserAgent,
		&s.IsLate, &s.LateMinutes, &s.PenaltyApplied, &s.DurationMinutes,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *sessionRepositoryImpl) getOne(ctx context.Context, query string, args ...any) (*attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSession(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetOpenSession implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) GetOpenSession(ctx context.Context, employeeID string) (*attendance.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE employee_id = $1 AND check_out IS NULL
		ORDER BY check_in DESC
		LIMIT 1
	`
	s, err := r.getOne(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}
	return s, nil
}

// GetLatest implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) GetLatest(ctx context.Context, employeeID string) (*attendance.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE employee_id = $1
		ORDER BY check_in DESC
		LIMIT 1
	`
	s, err := r.getOne(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}
	return s, nil
}

// Create implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) Create(ctx context.Context, session attendance.Session) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_sessions (
			employee_id, check_in, check_out, work_date, method,
			location, check_out_location, ip_address, user_agent,
			is_late, late_minutes, penalty_applied, duration_minutes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		session.EmployeeID,
		session.CheckIn,
		session.CheckOut,
		session.WorkDate,
		session.Method,
		session.Location,
		session.CheckOutLocation,
		session.IPAddress,
		session.UserAgent,
		session.IsLate,
		session.LateMinutes,
		session.PenaltyApplied,
		session.DurationMinutes,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_attendance_sessions_open") {
			return attendance.Session{}, attendance.ErrOpenSessionExists
		}
		return attendance.Session{}, fmt.Errorf("failed to create attendance session: %w", err)
	}

	return session, nil
}

// Close implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) Close(ctx context.Context, session attendance.Session) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET check_out = $1,
			duration_minutes = $2,
			check_out_location = $3,
			ip_address = $4,
			user_agent = $5,
			updated_at = NOW()
		WHERE id = $6 AND check_out IS NULL
	`

	tag, err := q.Exec(ctx, query,
		session.CheckOut,
		session.DurationMinutes,
		session.CheckOutLocation,
		session.IPAddress,
		session.UserAgent,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to close attendance session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNotCheckedIn
	}
	return nil
}

// ListByCheckInRange implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) ListByCheckInRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE employee_id = $1 AND check_in >= $2 AND check_in < $3
		ORDER BY check_in ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// ========== LINKS ==========

// CountOpenCheckedInBefore implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) CountOpenCheckedInBefore(ctx context.Context, before time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendance_sessions
		WHERE check_out IS NULL AND check_in < $1
	`, before).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count open attendance sessions: %w", err)
	}
	return count, nil
}

type linkRepositoryImpl struct {
	db *database.DB
}

func NewLinkRepository(db *database.DB) attendance.LinkRepository {
	return &linkRepositoryImpl{db: db}
}

// Create implements attendance.LinkRepository.
func (r *linkRepositoryImpl) Create(ctx context.Context, link attendance.Link) (attendance.Link, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_links (employee_id, action, token_hash, work_date, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		link.EmployeeID, link.Action, link.TokenHash, link.WorkDate, link.ExpiresAt,
	).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		return attendance.Link{}, fmt.Errorf("failed to create attendance link: %w", err)
	}

	return link, nil
}

func (r *linkRepositoryImpl) getByTokenHash(ctx context.Context, tokenHash []byte, lock bool) (attendance.Link, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, action, token_hash, work_date, expires_at, used_at, created_at
		FROM attendance_links
		WHERE token_hash = $1
	`
	if lock {
		query += ` FOR UPDATE`
	}

	var l attendance.Link
	err := q.QueryRow(ctx, query, tokenHash).Scan(
		&l.ID, &l.EmployeeID, &l.Action, &l.TokenHash, &l.WorkDate, &l.ExpiresAt, &l.UsedAt, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Link{}, attendance.ErrLinkNotFound
		}
		return attendance.Link{}, fmt.Errorf("failed to get attendance link: %w", err)
	}
	return l, nil
}

// GetByTokenHash implements attendance.LinkRepository.
func (r *linkRepositoryImpl) GetByTokenHash(ctx context.Context, tokenHash []byte) (attendance.Link, error) {
	return r.getByTokenHash(ctx, tokenHash, false)
}

// GetByTokenHashForUpdate implements attendance.LinkRepository.
func (r *linkRepositoryImpl) GetByTokenHashForUpdate(ctx context.Context, tokenHash []byte) (attendance.Link, error) {
	return r.getByTokenHash(ctx, tokenHash, true)
}

// MarkUsed implements attendance.LinkRepository.
func (r *linkRepositoryImpl) MarkUsed(ctx context.Context, id string, usedAt time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_links
		SET used_at = $1
		WHERE id = $2 AND used_at IS NULL
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, usedAt, id).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to mark attendance link used: %w", err)
	}
	return true, nil
}

// CountExpiredUnused implements attendance.LinkRepository.
func (r *linkRepositoryImpl) CountExpiredUnused(ctx context.Context, before time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendance_links
		WHERE used_at IS NULL AND expires_at < $1
	`, before).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expired attendance links: %w", err)
	}
	return count, nil
}
