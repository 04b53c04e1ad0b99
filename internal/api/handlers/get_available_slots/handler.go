package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-BarberBooking/internal/usecase/get_available_slots"
)

const (
	msgInvalidBarbershopID = "некорректный ID барбершопа"
	msgInvalidBarberID     = "некорректный ID мастера"
	msgInvalidServiceIDs   = "некорректный список услуг"
	msgMissingServiceIDs   = "serviceIds обязателен"
	msgMissingDate         = "дата обязательна"
	msgInvalidDate         = "некорректная дата, ожидается YYYY-MM-DD не в прошлом"
	msgDateTooFar          = "дата слишком далеко в будущем"
	msgBarbershopNotFound  = "барбершоп не найден"
	msgBarberNotFound      = "мастер не найден"
	msgServiceNotFound     = "услуга не найдена"
	msgInvalidInput        = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/barbershops/{barbershopId}/barbers/{barberId}/available-slots
// Query params: date (YYYY-MM-DD), serviceIds (через запятую или повтором)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	const route = "GET /barbershops/{id}/barbers/{id}/available-slots"

	barbershopID, err := handlers.PathInt64(r, "barbershopId")
	if err != nil {
		h.logger.Warn("%s - Invalid barbershop ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidBarbershopID)
		return
	}

	barberID, err := handlers.PathInt64(r, "barberId")
	if err != nil {
		h.logger.Warn("%s - Invalid barber ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	query := r.URL.Query()
	date := query.Get("date")
	if date == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	serviceIDs, err := parseServiceIDs(query["serviceIds"])
	if err != nil {
		h.logger.Warn("%s - Invalid service IDs: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidServiceIDs)
		return
	}
	if len(serviceIDs) == 0 {
		handlers.RespondBadRequest(w, msgMissingServiceIDs)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		BarbershopID: barbershopID,
		BarberID:     barberID,
		Date:         date,
		ServiceIDs:   serviceIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrBarbershopNotFound):
			handlers.RespondNotFound(w, msgBarbershopNotFound)

		case errors.Is(err, getAvailableSlots.ErrBarberNotFound):
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("%s - Failed to get slots: barbershop_id=%d, barber_id=%d, error=%v",
				route, barbershopID, barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Slots retrieved: barbershop_id=%d, barber_id=%d, date=%s, slots_count=%d",
		route, barbershopID, barberID, date, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
