package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryTypeSalary  EntryType = "SALARY"
	EntryTypeBonus   EntryType = "BONUS"
	EntryTypePenalty EntryType = "PENALTY"
	EntryTypeAdvance EntryType = "ADVANCE"
)

// AdjustmentTypes are the entry types folded into a payroll period and
// archived when it is paid.
var AdjustmentTypes = []EntryType{EntryTypeBonus, EntryTypePenalty, EntryTypeAdvance}

// ManualEntryTypes may be recorded by staff. SALARY rows only come from payroll payment.
var ManualEntryTypes = []string{
	string(EntryTypeBonus),
	string(EntryTypePenalty),
	string(EntryTypeAdvance),
}

// Entry is append-only. PayrollID is stamped once, when the payroll period
// that accounted for the entry is paid.
type Entry struct {
	ID          string
	EmployeeID  string
	PayrollID   *string
	EntryType   EntryType
	Amount      decimal.Decimal
	PayoutDate  time.Time
	Description string
	CreatedAt   time.Time
}

func (e Entry) IsArchived() bool {
	return e.PayrollID != nil
}

// Totals are per-type sums of adjustment entries.
type Totals struct {
	Bonuses   decimal.Decimal
	Penalties decimal.Decimal
	Advances  decimal.Decimal
}

// Sum folds adjustment entries into totals. SALARY entries are ignored.
func Sum(entries []Entry) Totals {
	t := Totals{Bonuses: decimal.Zero, Penalties: decimal.Zero, Advances: decimal.Zero}
	for _, e := range entries {
		switch e.EntryType {
		case EntryTypeBonus:
			t.Bonuses = t.Bonuses.Add(e.Amount)
		case EntryTypePenalty:
			t.Penalties = t.Penalties.Add(e.Amount)
		case EntryTypeAdvance:
			t.Advances = t.Advances.Add(e.Amount)
		}
	}
	return t
}
