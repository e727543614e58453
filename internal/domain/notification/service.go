package notification

import (
	"context"
)

// Service defines the in-app notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	// Direct operations
	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}

// Dispatcher sends a message to external recipients. Calls never block on
// delivery and delivery failures are not reported back.
type Dispatcher interface {
	Notify(ctx context.Context, recipients []string, title, message string) error
}

// Publisher pushes an outbound message onto a delivery queue.
type Publisher interface {
	Publish(ctx context.Context, msg OutboundMessage) error
}
