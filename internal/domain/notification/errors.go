package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrQueueFull            = errors.New("notification queue is full")
	ErrNoRecipients         = errors.New("notification has no recipients")
)
