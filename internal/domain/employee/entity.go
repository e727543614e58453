package employee

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID             string
	StoreID        string
	BranchID       *string
	UserID         *string
	FullName       string
	MonthlySalary  *decimal.Decimal
	ShiftStartTime *clock.TimeOfDay
	Advances       decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined from branch / store
	BranchPenaltyPer15Min *decimal.Decimal
	Timezone              string
}

// Salary returns the configured monthly salary, zero when unset.
func (e Employee) Salary() decimal.Decimal {
	if e.MonthlySalary == nil {
		return decimal.Zero
	}
	return *e.MonthlySalary
}

// StoreSettings holds the store-wide attendance defaults and notification targets.
type StoreSettings struct {
	StoreID                 string
	ShiftStartTime          *clock.TimeOfDay
	GraceMinutes            int
	PenaltyPer15Min         decimal.Decimal
	LateNotificationEnabled bool
	NotificationNumbers     []string
}
