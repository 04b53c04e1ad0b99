package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// BarbershopRepository интерфейс репозитория барбершопов
type BarbershopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Barbershop, error)
	GetWeeklyHours(ctx context.Context, barbershopID int64) (domain.WeeklyHours, error)
	GetServices(ctx context.Context, barbershopID int64, ids []int64) ([]*domain.Service, error)
	BarberBelongsTo(ctx context.Context, barberID, barbershopID int64) (bool, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListActiveByBarberAndRange неотменённые бронирования мастера, пересекающие [from, to)
	ListActiveByBarberAndRange(ctx context.Context, barberID int64, from, to time.Time) ([]*domain.Booking, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
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
