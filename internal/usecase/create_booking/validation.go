package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// validateRequest валидирует входные данные запроса и убирает повторы услуг
func validateRequest(req *Request) ([]int64, error) {
	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.BarbershopID <= 0 {
		return nil, fmt.Errorf("%w: barbershopID must be positive", ErrInvalidInput)
	}

	if req.BarberID <= 0 {
		return nil, fmt.Errorf("%w: barberID must be positive", ErrInvalidInput)
	}

	if req.StartAt == "" {
		return nil, fmt.Errorf("%w: startAt is required", ErrInvalidInput)
	}

	if !req.PaymentMethod.IsValid() {
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, req.PaymentMethod)
	}

	if len(req.ServiceIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one serviceId is required", ErrInvalidInput)
	}

	seen := make(map[int64]struct{}, len(req.ServiceIDs))
	unique := make([]int64, 0, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) > domain.MaxServicesPerBooking {
		return nil, fmt.Errorf("%w: at most %d services per booking", ErrInvalidInput, domain.MaxServicesPerBooking)
	}

	return unique, nil
}

// validateStart проверяет горизонт записи и буфер до начала
func validateStart(zone slottime.Zone, start, now time.Time, buffer time.Duration, maxAdvanceDays int) error {
	today := zone.DayKey(now)
	day := zone.DayKey(start)

	if day.Before(today) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidDate)
	}

	if maxAdvanceDays > 0 && day.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxAdvanceDays)
	}

	if start.Before(now.Add(buffer)) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, int(buffer.Minutes()))
	}

	return nil
}
