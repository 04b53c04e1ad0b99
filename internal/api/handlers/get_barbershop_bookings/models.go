package get_barbershop_bookings

import (
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-BarberBooking/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// Даты проверяет сервис в зоне барбершопа
func ToServiceRequest(
	barbershopID int64,
	userID int64,
	startDate string,
	endDate string,
	includeInactiveStr string,
) (*models.GetBarbershopBookingsRequest, error) {
	req := &models.GetBarbershopBookingsRequest{
		UserID:       userID,
		BarbershopID: barbershopID,
		StartDate:    startDate,
		EndDate:      endDate,
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
