package dispatch_notifications

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// JobRepository интерфейс репозитория задач уведомлений
type JobRepository interface {
	ListDue(ctx context.Context, now time.Time, cursor *domain.JobCursor, limit int) ([]*domain.NotificationJob, error)
	// Claim возвращает захваченную строку или nil, если задачу захватить не удалось
	Claim(ctx context.Context, id int64, now time.Time) (*domain.NotificationJob, error)
	MarkSent(ctx context.Context, id int64, now time.Time) error
	MarkCanceled(ctx context.Context, id int64, reason string, now time.Time) error
	MarkRetry(ctx context.Context, id int64, attempts int, lastError string, nextAt, now time.Time) error
	MarkFailed(ctx context.Context, id int64, attempts int, lastError string, now time.Time) error
	Release(ctx context.Context, id int64, now time.Time) error
	GetNotificationContext(ctx context.Context, bookingID int64) (*domain.NotificationContext, error)
}

// Sender интерфейс провайдера рассылок
type Sender interface {
	Send(ctx context.Context, msg domain.OutboundMessage) (string, error)
}

// Limiter ограничение частоты отправок
type Limiter interface {
	Wait(ctx context.Context) error
}

// MetricsCollector счётчики рассылки
type MetricsCollector interface {
	IncDispatchJob(outcome string)
	ObserveDispatchRun(duration time.Duration)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
