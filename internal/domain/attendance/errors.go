package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn      = errors.New("you are already checked in")
	ErrNotCheckedIn          = errors.New("you have not checked in yet")
	ErrOpenSessionExists     = errors.New("an open attendance session already exists")
	ErrCheckOutBeforeCheckIn = errors.New("check-out cannot be before check-in")

	// Link errors
	ErrLinkNotFound    = errors.New("attendance link not found")
	ErrLinkUnusable    = errors.New("attendance link is expired or already used")
	ErrInvalidQRTarget = errors.New("QR code does not match this employee or store")

	// General errors
	ErrInvalidMonth = errors.New("invalid month, use YYYY-MM")
)
