package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_UsesLocalCalendar(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 2024-05-31 20:00 UTC is already June 1st in Jakarta
	instant := time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), DateOf(instant, jakarta))
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), DateOf(instant, time.UTC))
}

func TestMonthBoundaries(t *testing.T) {
	date := time.Date(2024, 2, 17, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), MonthStart(date))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), NextMonth(date))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), MonthEnd(date))

	december := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), NextMonth(december))
}

func TestEndOfDay(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	end := EndOfDay(date, loc)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 59, end.Second())
	assert.Equal(t, time.Date(2024, 1, 10, 20, 59, 59, 0, time.UTC), end.UTC())
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		input string
		want  TimeOfDay
		ok    bool
	}{
		{"09:00", TimeOfDay{Hour: 9}, true},
		{"17:30:15", TimeOfDay{Hour: 17, Minute: 30, Second: 15}, true},
		{"25:00", TimeOfDay{}, false},
		{"nine", TimeOfDay{}, false},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.input)
		if !c.ok {
			assert.Error(t, err, c.input)
			continue
		}
		require.NoError(t, err, c.input)
		assert.Equal(t, c.want, got)
	}
}

func TestTimeOfDay_MicrosecondsRoundTrip(t *testing.T) {
	tod := TimeOfDay{Hour: 8, Minute: 45, Second: 30}
	assert.Equal(t, tod, TimeOfDayFromMicroseconds(tod.Microseconds()))
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m)

	_, err = ParseMonth("2024-13")
	assert.Error(t, err)
}

func TestLoadLocation_FallsBack(t *testing.T) {
	fallback := time.FixedZone("FB", 0)
	assert.Equal(t, fallback, LoadLocation("", fallback))
	assert.Equal(t, fallback, LoadLocation("Not/AZone", fallback))
}

func TestFake_Advance(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	f := NewFake(start)
	f.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), f.Now())
}
