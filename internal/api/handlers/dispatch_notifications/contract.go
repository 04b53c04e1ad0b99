package dispatch_notifications

import (
	"context"

	dispatchNotifications "github.com/m04kA/SMC-BarberBooking/internal/usecase/dispatch_notifications"
)

type DispatchUseCase interface {
	Run(ctx context.Context) (*dispatchNotifications.Summary, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
