package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/pkg/jobs"
)

// Notification is a short confirmation shown to the instructor after a write.
type Notification struct {
	Event   string
	Message string
	Fields  map[string]string
}

// Notifier delivers notifications. Delivery is fire-and-forget: failures
// are never surfaced to the operation that emitted the notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the structured log and counts them.
type LogNotifier struct {
	logger  *zap.Logger
	metrics *MetricsService
}

// NewLogNotifier constructs a notifier backed by zap.
func NewLogNotifier(logger *zap.Logger, metrics *MetricsService) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger, metrics: metrics}
}

// Notify logs the notification at info level.
func (n *LogNotifier) Notify(_ context.Context, note Notification) {
	fields := make([]zap.Field, 0, len(note.Fields)+2)
	fields = append(fields, zap.String("event", note.Event), zap.String("message", note.Message))
	for key, value := range note.Fields {
		fields = append(fields, zap.String(key, value))
	}
	n.logger.Info("notification", fields...)
	n.metrics.RecordNotification()
}

const notificationJob = "notification"

// AsyncNotifier hands notifications to a worker queue so slow sinks never
// delay the write that produced them. Notifications are dropped with a
// warning when the queue is full or stopped.
type AsyncNotifier struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAsyncNotifier wraps next with a queue of the given size. Call Start
// before use and Stop on shutdown to flush pending notifications.
func NewAsyncNotifier(next Notifier, workers, buffer int, logger *zap.Logger) *AsyncNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := jobs.NewQueue("notifications", func(ctx context.Context, job jobs.Job) error {
		note, ok := job.Payload.(Notification)
		if !ok {
			return fmt.Errorf("unexpected payload %T", job.Payload)
		}
		next.Notify(ctx, note)
		return nil
	}, jobs.QueueConfig{Workers: workers, BufferSize: buffer, Logger: logger})
	return &AsyncNotifier{queue: queue, logger: logger}
}

// Start launches the delivery workers.
func (n *AsyncNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop flushes queued notifications.
func (n *AsyncNotifier) Stop() {
	n.queue.Stop()
}

// Notify enqueues the notification.
func (n *AsyncNotifier) Notify(_ context.Context, note Notification) {
	if err := n.queue.Submit(notificationJob, note); err != nil {
		n.logger.Warn("notification dropped", zap.String("event", note.Event), zap.Error(err))
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) {}
