package update_messaging_settings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/service/config"
	"github.com/m04kA/SMC-BarberBooking/internal/service/config/models"
)

const (
	msgInvalidBarbershopID = "некорректный ID барбершопа"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgNotFound            = "барбершоп не найден"
	msgForbidden           = "доступ запрещен"
)

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/barbershops/{barbershopId}/config/messaging
// Переход на тариф без сообщений отменяет будущие уведомления барбершопа
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	barbershopID, err := handlers.PathInt64(r, "barbershopId")
	if err != nil {
		h.logger.Warn("PUT /barbershops/{id}/config/messaging - Invalid barbershop ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarbershopID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateMessagingRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("PUT /barbershops/{id}/config/messaging - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	result, err := h.service.UpdateMessaging(r.Context(), barbershopID, &req)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrBarbershopNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, config.ErrAccessDenied):
			h.logger.Warn("PUT /barbershops/{id}/config/messaging - Access denied: barbershop_id=%d, user_id=%d",
				barbershopID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, config.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PUT /barbershops/{id}/config/messaging - Failed to update: barbershop_id=%d, error=%v",
				barbershopID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /barbershops/{id}/config/messaging - Updated: barbershop_id=%d, plan=%s, canceled_jobs=%d",
		barbershopID, result.Messaging.Plan, result.CanceledJobs)
	handlers.RespondJSON(w, http.StatusOK, result)
}
