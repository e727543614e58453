package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
)

type notificationRepository struct {
	store *Store
}

func NewNotificationRepository(store *Store) notification.Repository {
	return &notificationRepository{store: store}
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if n.ID == "" {
		n.ID = newID()
	}
	stored := *n
	r.store.notifications[n.ID] = &stored
	return nil
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	for _, n := range notifications {
		if err := r.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *notificationRepository) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*notification.Notification
	for _, n := range r.store.notifications {
		if n.RecipientID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		copied := *n
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return []*notification.Notification{}, total, nil
	}
	end := min(start+pageSize, total)
	return matched[start:end], total, nil
}

func (r *notificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, n := range r.store.notifications {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	for _, id := range ids {
		if n, ok := r.store.notifications[id]; ok && n.RecipientID == userID {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	for _, n := range r.store.notifications {
		if n.RecipientID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}
