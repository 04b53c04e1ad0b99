package reconcile_barbershop_payments

import (
	"context"

	reconcilePayment "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
)

type ReconcileUseCase interface {
	ReconcileForTenant(ctx context.Context, barbershopID int64) (*reconcilePayment.SweepSummary, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
