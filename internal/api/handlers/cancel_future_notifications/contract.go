package cancel_future_notifications

import "context"

type NotificationScheduler interface {
	CancelFutureTenantNotificationJobs(ctx context.Context, barbershopID int64, reason string) (int64, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
