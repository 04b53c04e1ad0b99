package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/internal/usecase/fulfill_waitlist"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]*domain.Booking, error)
	ListByBarbershopAndRange(ctx context.Context, barbershopID int64, from, to time.Time) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason *string, now time.Time) error
}

// BarbershopRepository нужен для проверки прав владельца
type BarbershopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Barbershop, error)
}

// NotificationScheduler интерфейс планировщика уведомлений
type NotificationScheduler interface {
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

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}
