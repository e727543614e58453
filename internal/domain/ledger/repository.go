package ledger

import (
	"context"
	"time"
)

type LedgerRepository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	// ListByPayoutRange returns entries with from <= payout_date <= to, oldest first.
	ListByPayoutRange(ctx context.Context, employeeID string, from, to time.Time) ([]Entry, error)
	// ListUnarchivedAdjustments returns BONUS/PENALTY/ADVANCE entries in the
	// range that are not yet archived, or archived to payrollID.
	ListUnarchivedAdjustments(ctx context.Context, employeeID string, from, to time.Time, payrollID *string) ([]Entry, error)
	// Archive stamps payrollID on every adjustment entry in the range that is
	// not archived yet and returns how many rows were stamped.
	Archive(ctx context.Context, employeeID, payrollID string, from, to time.Time) (int64, error)
	// GetOrCreateSalary returns the SALARY entry keyed by employee, payroll and
	// payout date, inserting entry when none exists.
	GetOrCreateSalary(ctx context.Context, entry Entry) (Entry, bool, error)
}
