package waitlist

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// WaitlistRepository интерфейс репозитория листа ожидания
type WaitlistRepository interface {
	Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.WaitlistEntry, error)
	MarkSeen(ctx context.Context, id int64, userID int64, now time.Time) error
}

// BarbershopRepository интерфейс репозитория барбершопов
type BarbershopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Barbershop, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	BarberBelongsTo(ctx context.Context, barberID, barbershopID int64) (bool, error)
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
