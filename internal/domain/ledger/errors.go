package ledger

import "errors"

var (
	ErrEntryNotFound     = errors.New("ledger entry not found")
	ErrInvalidEntryType  = errors.New("entry_type must be BONUS, PENALTY or ADVANCE")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrInvalidMonth      = errors.New("invalid month, use YYYY-MM")
)
