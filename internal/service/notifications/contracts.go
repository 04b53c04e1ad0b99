package notifications

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// JobRepository интерфейс репозитория задач уведомлений
type JobRepository interface {
	InsertSkipDuplicates(ctx context.Context, bookingID, barbershopID int64, jobs []domain.PlannedJob, now time.Time) (int, error)
	CancelPendingByBooking(ctx context.Context, bookingID int64, reason string, now time.Time) (int64, error)
	CancelFuturePendingByBarbershop(ctx context.Context, barbershopID int64, reason string, now time.Time) (int64, error)
	GetNotificationContext(ctx context.Context, bookingID int64) (*domain.NotificationContext, error)
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
