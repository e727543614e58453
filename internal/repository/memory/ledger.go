package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/ledger"
)

type ledgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) ledger.LedgerRepository {
	return &ledgerRepository{store: store}
}

func sortEntries(entries []ledger.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].PayoutDate.Equal(entries[j].PayoutDate) {
			return entries[i].PayoutDate.Before(entries[j].PayoutDate)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

func inDateRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

func isAdjustment(t ledger.EntryType) bool {
	for _, a := range ledger.AdjustmentTypes {
		if a == t {
			return true
		}
	}
	return false
}

func (r *ledgerRepository) Create(ctx context.Context, entry ledger.Entry) (ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if entry.ID == "" {
		entry.ID = newID()
	}
	entry.CreatedAt = time.Now()
	r.store.entries[entry.ID] = entry
	return entry, nil
}

func (r *ledgerRepository) ListByPayoutRange(ctx context.Context, employeeID string, from, to time.Time) ([]ledger.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []ledger.Entry
	for _, e := range r.store.entries {
		if e.EmployeeID == employeeID && inDateRange(e.PayoutDate, from, to) {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (r *ledgerRepository) ListUnarchivedAdjustments(ctx context.Context, employeeID string, from, to time.Time, payrollID *string) ([]ledger.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []ledger.Entry
	for _, e := range r.store.entries {
		if e.EmployeeID != employeeID || !isAdjustment(e.EntryType) || !inDateRange(e.PayoutDate, from, to) {
			continue
		}
		if e.PayrollID != nil && (payrollID == nil || *e.PayrollID != *payrollID) {
			continue
		}
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

func (r *ledgerRepository) Archive(ctx context.Context, employeeID, payrollID string, from, to time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var stamped int64
	for id, e := range r.store.entries {
		if e.EmployeeID != employeeID || !isAdjustment(e.EntryType) || !inDateRange(e.PayoutDate, from, to) {
			continue
		}
		if e.PayrollID != nil {
			continue
		}
		pid := payrollID
		e.PayrollID = &pid
		r.store.entries[id] = e
		stamped++
	}
	return stamped, nil
}

func (r *ledgerRepository) GetOrCreateSalary(ctx context.Context, entry ledger.Entry) (ledger.Entry, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.entries {
		if e.EmployeeID == entry.EmployeeID &&
			e.EntryType == ledger.EntryTypeSalary &&
			e.PayrollID != nil && entry.PayrollID != nil && *e.PayrollID == *entry.PayrollID &&
			e.PayoutDate.Equal(entry.PayoutDate) {
			return e, false, nil
		}
	}

	if entry.ID == "" {
		entry.ID = newID()
	}
	entry.EntryType = ledger.EntryTypeSalary
	entry.CreatedAt = time.Now()
	r.store.entries[entry.ID] = entry
	return entry, true, nil
}
