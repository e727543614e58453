package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type ledgerRepositoryImpl struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) ledger.LedgerRepository {
	return &ledgerRepositoryImpl{db: db}
}

const ledgerColumns = `id, employee_id, payroll_id, entry_type, amount, payout_date, description, created_at`

func adjustmentTypes() []string {
	types := make([]string, len(ledger.AdjustmentTypes))
	for i, t := range ledger.AdjustmentTypes {
		types[i] = string(t)
	}
	return types
}

func scanEntries(rows pgx.Rows) ([]ledger.Entry, error) {
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(
			&e.ID, &e.EmployeeID, &e.PayrollID, &e.EntryType, &e.Amount,
			&e.PayoutDate, &e.Description, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Create implements ledger.LedgerRepository.
func (r *ledgerRepositoryImpl) Create(ctx context.Context, entry ledger.Entry) (ledger.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO ledger_entries (employee_id, payroll_id, entry_type, amount, payout_date, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		entry.EmployeeID, entry.PayrollID, entry.EntryType, entry.Amount, entry.PayoutDate, entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return entry, nil
}

// ListByPayoutRange implements ledger.LedgerRepository.
func (r *ledgerRepositoryImpl) ListByPayoutRange(ctx context.Context, employeeID string, from, to time.Time) ([]ledger.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE employee_id = $1 AND payout_date BETWEEN $2 AND $3
		ORDER BY payout_date ASC, created_at ASC
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return scanEntries(rows)
}

// ListUnarchivedAdjustments implements ledger.LedgerRepository.
func (r *ledgerRepositoryImpl) ListUnarchivedAdjustments(ctx context.Context, employeeID string, from, to time.Time, payrollID *string) ([]ledger.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE employee_id = $1
		  AND entry_type = ANY($2)
		  AND payout_date BETWEEN $3 AND $4
		  AND (payroll_id IS NULL OR payroll_id = $5)
		ORDER BY payout_date ASC, created_at ASC
	`

	rows, err := q.Query(ctx, query, employeeID, adjustmentTypes(), from, to, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unarchived ledger entries: %w", err)
	}
	return scanEntries(rows)
}

// Archive implements ledger.LedgerRepository.
func (r *ledgerRepositoryImpl) Archive(ctx context.Context, employeeID, payrollID string, from, to time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE ledger_entries
		SET payroll_id = $1
		WHERE employee_id = $2
		  AND entry_type = ANY($3)
		  AND payout_date BETWEEN $4 AND $5
		  AND payroll_id IS NULL
	`

	tag, err := q.Exec(ctx, query, payrollID, employeeID, adjustmentTypes(), from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to archive ledger entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetOrCreateSalary implements ledger.LedgerRepository. The insert is keyed on
// the partial unique index over SALARY rows, so a repeated call returns the
// existing row.
func (r *ledgerRepositoryImpl) GetOrCreateSalary(ctx context.Context, entry ledger.Entry) (ledger.Entry, bool, error) {
	q := GetQuerier(ctx, r.db)

	insert := `
		INSERT INTO ledger_entries (employee_id, payroll_id, entry_type, amount, payout_date, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id, payroll_id, payout_date) WHERE entry_type = 'SALARY' DO NOTHING
		RETURNING ` + ledgerColumns

	var created ledger.Entry
	err := q.QueryRow(ctx, insert,
		entry.EmployeeID, entry.PayrollID, ledger.EntryTypeSalary, entry.Amount, entry.PayoutDate, entry.Description,
	).Scan(
		&created.ID, &created.EmployeeID, &created.PayrollID, &created.EntryType, &created.Amount,
		&created.PayoutDate, &created.Description, &created.CreatedAt,
	)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return ledger.Entry{}, false, fmt.Errorf("failed to create salary entry: %w", err)
	}

	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE employee_id = $1 AND payroll_id = $2 AND payout_date = $3 AND entry_type = 'SALARY'
	`

	var existing ledger.Entry
	err = q.QueryRow(ctx, query, entry.EmployeeID, entry.PayrollID, entry.PayoutDate).Scan(
		&existing.ID, &existing.EmployeeID, &existing.PayrollID, &existing.EntryType, &existing.Amount,
		&existing.PayoutDate, &existing.Description, &existing.CreatedAt,
	)
	if err != nil {
		return ledger.Entry{}, false, fmt.Errorf("failed to get salary entry: %w", err)
	}
	return existing, false, nil
}
