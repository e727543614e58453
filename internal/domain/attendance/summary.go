package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates a set of sessions, typically one employee's month.
type Summary struct {
	AttendanceDays   int
	TotalWorkMinutes int
	TotalLateMinutes int
	LatePenalties    decimal.Decimal
}

// Summarize counts distinct work dates and sums durations, late minutes and
// late penalties. Open sessions contribute no work minutes.
func Summarize(sessions []Session) Summary {
	days := make(map[time.Time]struct{})
	sum := Summary{LatePenalties: decimal.Zero}
	for _, s := range sessions {
		days[s.WorkDate] = struct{}{}
		if s.DurationMinutes != nil {
			sum.TotalWorkMinutes += *s.DurationMinutes
		}
		sum.TotalLateMinutes += s.LateMinutes
		sum.LatePenalties = sum.LatePenalties.Add(s.PenaltyApplied)
	}
	sum.AttendanceDays = len(days)
	return sum
}
