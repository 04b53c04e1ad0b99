package config

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// BarbershopRepository интерфейс репозитория настроек барбершопа
type BarbershopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Barbershop, error)
	GetWeeklyHours(ctx context.Context, barbershopID int64) (domain.WeeklyHours, error)
	ReplaceWeeklyHours(ctx context.Context, barbershopID int64, hours domain.WeeklyHours) error
	UpdateMessaging(ctx context.Context, barbershopID int64, settings domain.MessagingSettings, now time.Time) error
}

// NotificationScheduler интерфейс планировщика уведомлений
type NotificationScheduler interface {
	CancelFutureTenantNotificationJobs(ctx context.Context, barbershopID int64, reason string) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
