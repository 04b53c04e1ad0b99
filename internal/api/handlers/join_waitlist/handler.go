package join_waitlist

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/service/waitlist"
	"github.com/m04kA/SMC-BarberBooking/internal/service/waitlist/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgBarbershopNotFound = "барбершоп не найден"
	msgBarberNotFound     = "мастер не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgInvalidDate        = "дата в прошлом или слишком далеко в будущем"
	msgAlreadyOnWaitlist  = "вы уже в листе ожидания на этот день"
)

type Handler struct {
	service WaitlistService
	logger  Logger
}

func NewHandler(service WaitlistService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/waitlist
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.JoinRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /waitlist - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	entry, err := h.service.Join(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrBarbershopNotFound):
			handlers.RespondNotFound(w, msgBarbershopNotFound)

		case errors.Is(err, waitlist.ErrBarberNotFound):
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, waitlist.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, waitlist.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, waitlist.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, waitlist.ErrAlreadyOnWaitlist):
			h.logger.Warn("POST /waitlist - Duplicate entry: user_id=%d, barber_id=%d, date=%s",
				userID, req.BarberID, req.Date)
			handlers.RespondConflict(w, msgAlreadyOnWaitlist)

		default:
			h.logger.Error("POST /waitlist - Failed to join: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /waitlist - Joined: entry_id=%d, user_id=%d, date=%s", entry.ID, userID, entry.Date)
	handlers.RespondJSON(w, http.StatusCreated, entry)
}
