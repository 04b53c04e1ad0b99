package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса и убирает повторы услуг
func validateRequest(req *Request) ([]int64, error) {
	if req.BarbershopID <= 0 {
		return nil, fmt.Errorf("%w: barbershopID must be positive", ErrInvalidInput)
	}

	if req.BarberID <= 0 {
		return nil, fmt.Errorf("%w: barberID must be positive", ErrInvalidInput)
	}

	if req.Date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return uniqueServiceIDs(req.ServiceIDs)
}

func uniqueServiceIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one serviceId is required", ErrInvalidInput)
	}

	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
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
