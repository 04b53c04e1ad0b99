package reconcile_payment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/internal/usecase/fulfill_waitlist"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Booking, error)
	ListPendingStripe(ctx context.Context, filter domain.PendingPaymentFilter) ([]*domain.Booking, error)
	UpdatePayment(ctx context.Context, booking *domain.Booking, expected domain.PaymentStatus) error
}

// PaymentProvider интерфейс платёжного провайдера
type PaymentProvider interface {
	RetrieveSession(ctx context.Context, sessionID string) (*domain.ProviderSession, error)
	ParseWebhook(payload []byte, signature string) (*domain.ProviderEvent, error)
}

// NotificationScheduler интерфейс планировщика уведомлений
type NotificationScheduler interface {
	ScheduleBookingNotificationJobs(ctx context.Context, bookingID int64) (int, error)
	CancelPendingBookingNotificationJobs(ctx context.Context, bookingID int64, reason string) (int64, error)
}

// WaitlistFulfiller интерфейс выдачи освободившегося слота из листа ожидания
type WaitlistFulfiller interface {
	TryFulfillWaitlistForReleasedSlot(ctx context.Context, slot fulfill_waitlist.ReleasedSlot) (*fulfill_waitlist.Result, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsCollector счётчик исходов сверки
type MetricsCollector interface {
	IncReconciliation(source, outcome string)
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
