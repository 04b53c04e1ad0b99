package update_weekly_hours

import (
	"context"

	"github.com/m04kA/SMC-BarberBooking/internal/service/config/models"
)

type ConfigService interface {
	UpdateWeeklyHours(ctx context.Context, barbershopID int64, req *models.UpdateWeeklyHoursRequest) (*models.ConfigResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
