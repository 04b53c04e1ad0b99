package fulfill_waitlist

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// WaitlistRepository интерфейс репозитория листа ожидания
type WaitlistRepository interface {
	GetOldestActive(ctx context.Context, key domain.WaitlistKey) (*domain.WaitlistEntry, error)
	Expire(ctx context.Context, id int64, now time.Time) (bool, error)
	Claim(ctx context.Context, id int64, now time.Time) (bool, error)
	LinkBooking(ctx context.Context, id int64, bookingID int64) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// ServiceRepository интерфейс получения услуги барбершопа
type ServiceRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
}

// NotificationScheduler интерфейс планировщика уведомлений
type NotificationScheduler interface {
	ScheduleBookingNotificationJobs(ctx context.Context, bookingID int64) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsCollector счётчик исходов выдачи слотов
type MetricsCollector interface {
	IncWaitlistFulfillment(reason string)
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
