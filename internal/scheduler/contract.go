package scheduler

import (
	"context"

	dispatchNotifications "github.com/m04kA/SMC-BarberBooking/internal/usecase/dispatch_notifications"
	reconcilePayment "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
)

// Dispatcher прогон рассылки уведомлений
type Dispatcher interface {
	Run(ctx context.Context) (*dispatchNotifications.Summary, error)
}

// TenantReconciler сверка оплат одного барбершопа
type TenantReconciler interface {
	ReconcileForTenant(ctx context.Context, barbershopID int64) (*reconcilePayment.SweepSummary, error)
}

// BarbershopLister список барбершопов для плановой сверки
type BarbershopLister interface {
	ListActiveIDs(ctx context.Context) ([]int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
