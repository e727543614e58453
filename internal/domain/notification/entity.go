package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeAttendanceCheckIn  NotificationType = "attendance_check_in"
	TypeAttendanceCheckOut NotificationType = "attendance_check_out"
	TypeAttendanceLate     NotificationType = "attendance_late"
	TypeLedgerEntry        NotificationType = "ledger_entry"
	TypePayrollPaid        NotificationType = "payroll_paid"
)

// Notification represents an in-app notification
type Notification struct {
	ID          string
	StoreID     string
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// OutboundMessage is a message for external recipients such as store
// WhatsApp numbers.
type OutboundMessage struct {
	Recipients []string  `json:"recipients"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	QueuedAt   time.Time `json:"queued_at"`
}
