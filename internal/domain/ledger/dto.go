package ledger

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type RecordEntryRequest struct {
	EmployeeID  string          `json:"-"`
	EntryType   EntryType       `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	PayoutDate  *string         `json:"payout_date,omitempty"` // YYYY-MM-DD, today when empty
	Description string          `json:"description"`
}

func (r *RecordEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsInSlice(string(r.EntryType), ManualEntryTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "entry_type",
			Message: ErrInvalidEntryType.Error(),
		})
	}

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: ErrAmountNotPositive.Error(),
		})
	}

	if r.PayoutDate != nil {
		if _, ok := validator.IsValidDate(*r.PayoutDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "payout_date",
				Message: "payout_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(r.Description) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListEntriesRequest struct {
	EmployeeID string
	Month      string // YYYY-MM, current month when empty
}

type EntryResponse struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	PayrollID   *string         `json:"payroll_id,omitempty"`
	EntryType   EntryType       `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	PayoutDate  string          `json:"payout_date"`
	Description string          `json:"description"`
	Archived    bool            `json:"archived"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		EmployeeID:  e.EmployeeID,
		PayrollID:   e.PayrollID,
		EntryType:   e.EntryType,
		Amount:      e.Amount,
		PayoutDate:  e.PayoutDate.Format(clock.DateLayout),
		Description: e.Description,
		Archived:    e.IsArchived(),
		CreatedAt:   e.CreatedAt,
	}
}

type TotalsResponse struct {
	Bonuses   decimal.Decimal `json:"bonuses"`
	Penalties decimal.Decimal `json:"penalties"`
	Advances  decimal.Decimal `json:"advances"`
}

type EntryListResponse struct {
	Month   string          `json:"month"`
	Entries []EntryResponse `json:"entries"`
	Totals  TotalsResponse  `json:"totals"`
	// Running advances counter on the employee record.
	OutstandingAdvances decimal.Decimal `json:"outstanding_advances"`
}
