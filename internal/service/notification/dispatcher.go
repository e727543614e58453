package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

// DispatcherConfig holds outbound dispatcher configuration
type DispatcherConfig struct {
	QueueSize      int           // default: 256
	PublishTimeout time.Duration // default: 5 seconds
}

// Dispatcher hands outbound messages to a single background worker that
// pushes them through a Publisher. Notify never waits for delivery.
type Dispatcher struct {
	publisher notification.Publisher
	config    DispatcherConfig

	queue    chan notification.OutboundMessage
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

func NewDispatcher(publisher notification.Publisher, cfg DispatcherConfig) *Dispatcher {
	if publisher == nil {
		publisher = LogPublisher{}
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 256
	}
	if cfg.PublishTimeout == 0 {
		cfg.PublishTimeout = 5 * time.Second
	}

	d := &Dispatcher{
		publisher: publisher,
		config:    cfg,
		queue:     make(chan notification.OutboundMessage, cfg.QueueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Notify implements notification.Dispatcher. Invalid phone numbers are
// dropped; ErrNoRecipients is returned when none remain.
func (d *Dispatcher) Notify(ctx context.Context, recipients []string, title, message string) error {
	valid := make([]string, 0, len(recipients))
	for _, r := range recipients {
		normalized, ok := validator.NormalizePhoneNumber(r)
		if !ok {
			slog.Warn("dropping invalid notification recipient", "recipient", r)
			continue
		}
		valid = append(valid, normalized)
	}
	if len(valid) == 0 {
		return notification.ErrNoRecipients
	}

	msg := notification.OutboundMessage{
		Recipients: valid,
		Title:      title,
		Message:    message,
		QueuedAt:   time.Now().UTC(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return notification.ErrQueueFull
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		return notification.ErrQueueFull
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg notification.OutboundMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.PublishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, msg); err != nil {
		slog.Error("outbound notification failed",
			"recipients", len(msg.Recipients),
			"title", msg.Title,
			"error", err,
		)
	}
}

// Stop delivers what is already queued and stops the worker.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

// LogPublisher only logs messages. It is used when no queue is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, msg notification.OutboundMessage) error {
	slog.Info("outbound notification",
		"recipients", msg.Recipients,
		"title", msg.Title,
		"message", msg.Message,
	)
	return nil
}
