package attendance

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// CHECK DTOs
// ========================================

type CheckRequest struct {
	// Filled from the access token, never from the body.
	EmployeeID string `json:"-"`
	StoreID    string `json:"-"`

	// Optional identifiers printed on a store QR code. They are only compared
	// against the authenticated employee.
	EmployeeIDHint *string   `json:"employee_id,omitempty"`
	StoreIDHint    *string   `json:"store_id,omitempty"`
	Method         Method    `json:"method,omitempty"`
	Location       *Location `json:"location,omitempty"`
	IPAddress      *string   `json:"-"`
	UserAgent      *string   `json:"-"`
}

func (r *CheckRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Method != "" && !validator.IsInSlice(string(r.Method), MethodValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method must be one of QR, MANUAL, NFC",
		})
	}

	errs = append(errs, validateLocation(r.Location)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateLocation(loc *Location) validator.ValidationErrors {
	if loc == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if loc.Lat < -90 || loc.Lat > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "location.lat",
			Message: "lat must be between -90 and 90",
		})
	}
	if loc.Lng < -180 || loc.Lng > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "location.lng",
			Message: "lng must be between -180 and 180",
		})
	}
	if loc.Accuracy != nil && *loc.Accuracy < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "location.accuracy",
			Message: "accuracy cannot be negative",
		})
	}
	return errs
}

func (r *CheckRequest) Capture() Capture {
	return Capture{Location: r.Location, IPAddress: r.IPAddress, UserAgent: r.UserAgent}
}

const (
	StatusCheckIn  = "checkin"
	StatusCheckOut = "checkout"
)

type CheckResponse struct {
	Status          string           `json:"status"`
	Message         string           `json:"message"`
	SessionID       string           `json:"session_id"`
	WorkDate        string           `json:"work_date"`
	CheckIn         time.Time        `json:"check_in"`
	CheckOut        *time.Time       `json:"check_out,omitempty"`
	IsLate          *bool            `json:"is_late,omitempty"`
	LateMinutes     *int             `json:"late_minutes,omitempty"`
	Penalty         *decimal.Decimal `json:"penalty,omitempty"`
	DurationMinutes *int             `json:"duration_minutes,omitempty"`
	// Set when a forgotten session from an earlier day was closed first.
	RecoveredSessionID *string `json:"recovered_session_id,omitempty"`
}

// ========================================
// LINK DTOs
// ========================================

type IssueLinkRequest struct {
	EmployeeID string  `json:"-"`
	Action     *Action `json:"action,omitempty"`
}

func (r *IssueLinkRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LinkResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	Action    Action    `json:"action"`
	WorkDate  string    `json:"work_date"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RedeemLinkRequest struct {
	Token     string    `json:"token"`
	Location  *Location `json:"location,omitempty"`
	IPAddress *string   `json:"-"`
	UserAgent *string   `json:"-"`
}

func (r *RedeemLinkRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Token) {
		errs = append(errs, validator.ValidationError{
			Field:   "token",
			Message: "token is required",
		})
	}

	errs = append(errs, validateLocation(r.Location)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *RedeemLinkRequest) Capture() Capture {
	return Capture{Location: r.Location, IPAddress: r.IPAddress, UserAgent: r.UserAgent}
}

// ========================================
// READ DTOs
// ========================================

type SessionResponse struct {
	ID               string          `json:"id"`
	WorkDate         string          `json:"work_date"`
	Method           Method          `json:"method"`
	CheckIn          time.Time       `json:"check_in"`
	CheckOut         *time.Time      `json:"check_out,omitempty"`
	IsLate           bool            `json:"is_late"`
	LateMinutes      int             `json:"late_minutes"`
	PenaltyApplied   decimal.Decimal `json:"penalty_applied"`
	DurationMinutes  *int            `json:"duration_minutes,omitempty"`
	Location         *Location       `json:"location,omitempty"`
	CheckOutLocation *Location       `json:"check_out_location,omitempty"`
}

func NewSessionResponse(s Session) SessionResponse {
	return SessionResponse{
		ID:               s.ID,
		WorkDate:         s.WorkDate.Format(clock.DateLayout),
		Method:           s.Method,
		CheckIn:          s.CheckIn,
		CheckOut:         s.CheckOut,
		IsLate:           s.IsLate,
		LateMinutes:      s.LateMinutes,
		PenaltyApplied:   s.PenaltyApplied,
		DurationMinutes:  s.DurationMinutes,
		Location:         s.Location,
		CheckOutLocation: s.CheckOutLocation,
	}
}

type StatusResponse struct {
	Today      string `json:"today"`
	CheckedIn  bool   `json:"checked_in"`
	NextAction Action `json:"next_action"`
	// Sessions checked in on today's work date.
	TodaySessions int              `json:"today_sessions"`
	OpenSession   *SessionResponse `json:"open_session,omitempty"`
	LastSession   *SessionResponse `json:"last_session,omitempty"`
}

type MonthlyLogsRequest struct {
	EmployeeID string
	Month      string // YYYY-MM, current month when empty
}

type SummaryResponse struct {
	AttendanceDays   int             `json:"attendance_days"`
	TotalWorkMinutes int             `json:"total_work_minutes"`
	TotalLateMinutes int             `json:"total_late_minutes"`
	LatePenalties    decimal.Decimal `json:"late_penalties"`
}

type MonthlyLogsResponse struct {
	Month    string            `json:"month"`
	Sessions []SessionResponse `json:"sessions"`
	Summary  SummaryResponse   `json:"summary"`
}
