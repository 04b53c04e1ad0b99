package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-BarberBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "пользователь не определён"
	msgBarbershopNotFound = "барбершоп не найден"
	msgBarberNotFound     = "мастер не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgInvalidDate        = "некорректная дата бронирования"
	msgDateTooFar         = "дата слишком далеко в будущем"
	msgInvalidTimeSlot    = "время не попадает в сетку слотов или в часы работы"
	msgTooLateToBook      = "слишком поздно для записи на это время"
	msgSlotTaken          = "слот уже занят"
	msgPaymentProvider    = "платёжный сервис недоступен, попробуйте позже"
	msgInvalidInput       = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	zone    slottime.Zone
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, zone slottime.Zone, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		zone:    zone,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrBarbershopNotFound):
			handlers.RespondNotFound(w, msgBarbershopNotFound)

		case errors.Is(err, createBooking.ErrBarberNotFound):
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrSlotTaken):
			h.logger.Warn("POST /bookings - Slot taken: barber_id=%d, start_at=%s", req.BarberID, req.StartAt)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, createBooking.ErrPaymentProvider):
			h.logger.Error("POST /bookings - Payment provider failed: user_id=%d, error=%v", userID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPaymentProvider)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, barbershop_id=%d, error=%v",
				userID, req.BarbershopID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%d, user_id=%d, payment_method=%s",
		result.Booking.ID, userID, result.Booking.PaymentMethod)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result, h.zone))
}
