package stripe_webhook

import (
	"context"

	reconcilePayment "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
)

type WebhookUseCase interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*reconcilePayment.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
