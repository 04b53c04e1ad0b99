package update_messaging_settings

import (
	"context"

	"github.com/m04kA/SMC-BarberBooking/internal/service/config/models"
)

type ConfigService interface {
	UpdateMessaging(ctx context.Context, barbershopID int64, req *models.UpdateMessagingRequest) (*models.UpdateMessagingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
