package clock

import (
	"fmt"
	"time"
	_ "time/tzdata" // store timezones must resolve on hosts without zoneinfo
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Civil dates are carried as time.Time at midnight UTC, which is also how
// pgx scans DATE columns.

// DateOf returns the calendar date of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the instant local midnight of date begins in loc.
func StartOfDay(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59 of date in loc.
func EndOfDay(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}

// MonthStart returns the first day of the month containing date.
func MonthStart(date time.Time) time.Time {
	y, m, _ := date.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth returns the first day of the month after the one containing date.
func NextMonth(date time.Time) time.Time {
	return MonthStart(date).AddDate(0, 1, 0)
}

// MonthEnd returns the last day of the month containing date.
func MonthEnd(date time.Time) time.Time {
	return NextMonth(date).AddDate(0, 0, -1)
}

// ParseMonth accepts "YYYY-MM" and returns the first day of that month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return t, nil
}

// ParseDate accepts "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// LoadLocation resolves an IANA zone name, falling back when the name is empty
// or unknown.
func LoadLocation(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}

// TimeOfDay is a wall clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
}

// MustTimeOfDay is ParseTimeOfDay for constants.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// TimeOfDayFromMicroseconds converts a postgres TIME value.
func TimeOfDayFromMicroseconds(us int64) TimeOfDay {
	secs := us / 1_000_000
	return TimeOfDay{Hour: int(secs / 3600), Minute: int(secs % 3600 / 60), Second: int(secs % 60)}
}

// Microseconds converts back to the postgres TIME representation.
func (t TimeOfDay) Microseconds() int64 {
	return int64(t.Hour*3600+t.Minute*60+t.Second) * 1_000_000
}

// On anchors the time of day to date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
