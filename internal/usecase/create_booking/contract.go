package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/internal/integrations/stripe"
	"github.com/m04kA/SMC-BarberBooking/internal/usecase/fulfill_waitlist"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	ListActiveByBarberAndRange(ctx context.Context, barberID int64, from, to time.Time) ([]*domain.Booking, error)
	SetStripeSession(ctx context.Context, id int64, sessionID string, now time.Time) error
	MarkCheckoutFailed(ctx context.Context, id int64, now time.Time) error
}

// BarbershopRepository интерфейс репозитория барбершопов
type BarbershopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Barbershop, error)
	GetWeeklyHours(ctx context.Context, barbershopID int64) (domain.WeeklyHours, error)
	GetServices(ctx context.Context, barbershopID int64, ids []int64) ([]*domain.Service, error)
	BarberBelongsTo(ctx context.Context, barberID, barbershopID int64) (bool, error)
}

// PaymentProvider интерфейс платёжного провайдера
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, req stripe.CheckoutRequest) (*domain.ProviderSession, error)
}

// NotificationScheduler интерфейс планировщика уведомлений
type NotificationScheduler interface {
	ScheduleBookingNotificationJobs(ctx context.Context, bookingID int64) (int, error)
}

// WaitlistFulfiller интерфейс выдачи освободившегося слота из листа ожидания
type WaitlistFulfiller interface {
	TryFulfillWaitlistForReleasedSlot(ctx context.Context, slot fulfill_waitlist.ReleasedSlot) (*fulfill_waitlist.Result, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsCollector счётчик конфликтов слотов
type MetricsCollector interface {
	IncBookingConflict()
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
