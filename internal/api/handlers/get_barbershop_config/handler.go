package get_barbershop_config

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/service/config"
)

const (
	msgInvalidBarbershopID = "некорректный ID барбершопа"
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

// Handle GET /api/v1/barbershops/{barbershopId}/config
// Тариф, флаги сообщений и часы работы, только для владельца
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	barbershopID, err := handlers.PathInt64(r, "barbershopId")
	if err != nil {
		h.logger.Warn("GET /barbershops/{id}/config - Invalid barbershop ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarbershopID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.Get(r.Context(), barbershopID, userID)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrBarbershopNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, config.ErrAccessDenied):
			h.logger.Warn("GET /barbershops/{id}/config - Access denied: barbershop_id=%d, user_id=%d",
				barbershopID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /barbershops/{id}/config - Failed to get config: barbershop_id=%d, error=%v",
				barbershopID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /barbershops/{id}/config - Config retrieved successfully: barbershop_id=%d", barbershopID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
