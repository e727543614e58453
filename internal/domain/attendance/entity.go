package attendance

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/shift"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodQR     Method = "QR"
	MethodManual Method = "MANUAL"
	MethodNFC    Method = "NFC"
)

var MethodValues = []string{
	string(MethodQR),
	string(MethodManual),
	string(MethodNFC),
}

// Location is the browser-reported position at capture time.
type Location struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// Capture is the client metadata recorded with a check-in or check-out.
type Capture struct {
	Location  *Location
	IPAddress *string
	UserAgent *string
}

// Session is one check-in/check-out pair. A session with no CheckOut is open;
// an employee has at most one open session at any time.
type Session struct {
	ID               string
	EmployeeID       string
	CheckIn          time.Time
	CheckOut         *time.Time
	WorkDate         time.Time
	Method           Method
	Location         *Location
	CheckOutLocation *Location
	IPAddress        *string
	UserAgent        *string
	IsLate           bool
	LateMinutes      int
	PenaltyApplied   decimal.Decimal
	DurationMinutes  *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (s Session) IsOpen() bool {
	return s.CheckOut == nil
}

// Close records the check-out. The check-in location is left untouched;
// client address and agent are refreshed from the closing capture.
func (s *Session) Close(at time.Time, capture Capture) error {
	if at.Before(s.CheckIn) {
		return ErrCheckOutBeforeCheckIn
	}
	s.CheckOut = &at
	minutes := int(at.Sub(s.CheckIn) / time.Minute)
	s.DurationMinutes = &minutes

	if capture.Location != nil {
		s.CheckOutLocation = capture.Location
	}
	if capture.IPAddress != nil {
		s.IPAddress = capture.IPAddress
	}
	if capture.UserAgent != nil {
		s.UserAgent = capture.UserAgent
	}
	return nil
}

// Lateness is frozen onto a session when it is created.
type Lateness struct {
	IsLate  bool
	Minutes int
	Penalty decimal.Decimal
}

// ComputeLateness compares checkIn against the window's grace deadline on
// workDate. Every started block of 15 full late minutes costs one penalty unit.
func ComputeLateness(checkIn, workDate time.Time, window *shift.Window, loc *time.Location) Lateness {
	if window == nil {
		return Lateness{Penalty: decimal.Zero}
	}
	deadline := window.Deadline(workDate, loc)
	if !checkIn.After(deadline) {
		return Lateness{Penalty: decimal.Zero}
	}
	minutes := int(checkIn.Sub(deadline) / time.Minute)
	blocks := int64(minutes / 15)
	return Lateness{
		IsLate:  true,
		Minutes: minutes,
		Penalty: window.PenaltyPer15Min.Mul(decimal.NewFromInt(blocks)),
	}
}

type Action string

const (
	ActionCheckIn  Action = "CHECKIN"
	ActionCheckOut Action = "CHECKOUT"
)

func (a Action) Valid() bool {
	return a == ActionCheckIn || a == ActionCheckOut
}

// Link is a single-use attendance token bound to one employee, action and day.
// Only a hash of the token is stored.
type Link struct {
	ID         string
	EmployeeID string
	Action     Action
	TokenHash  []byte
	WorkDate   time.Time
	ExpiresAt  time.Time
	UsedAt     *time.Time
	CreatedAt  time.Time
}

// Usable reports whether the link may still be redeemed at now, where today is
// the local work date at now.
func (l Link) Usable(now, today time.Time) bool {
	if l.UsedAt != nil {
		return false
	}
	if !l.WorkDate.Equal(today) {
		return false
	}
	return !now.After(l.ExpiresAt)
}
