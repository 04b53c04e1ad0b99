package reconcile_session

import (
	"context"

	reconcilePayment "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
)

type ReconcileUseCase interface {
	ReconcileBySessionID(ctx context.Context, sessionID string, hint reconcilePayment.Hint) (*reconcilePayment.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
