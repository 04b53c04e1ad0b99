package cancel_future_notifications

import (
	"net/http"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

const (
	msgInvalidBarbershopID = "некорректный ID барбершопа"
	msgInvalidRequestBody  = "некорректное тело запроса"
)

// CancelRequest причина отмены, по умолчанию plan_downgrade
type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=64"`
}

// CancelResponse сколько задач отменено
type CancelResponse struct {
	BarbershopID int64  `json:"barbershopId"`
	Reason       string `json:"reason"`
	CanceledJobs int64  `json:"canceledJobs"`
}

type Handler struct {
	scheduler NotificationScheduler
	logger    Logger
}

func NewHandler(scheduler NotificationScheduler, logger Logger) *Handler {
	return &Handler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// Handle POST /api/v1/internal/barbershops/{barbershopId}/notifications/cancel-future
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	barbershopID, err := handlers.PathInt64(r, "barbershopId")
	if err != nil {
		h.logger.Warn("POST /internal/barbershops/{id}/notifications/cancel-future - Invalid barbershop ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarbershopID)
		return
	}

	var req CancelRequest
	if r.ContentLength != 0 {
		if err := handlers.DecodeAndValidate(r, &req); err != nil {
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}
	if req.Reason == "" {
		req.Reason = domain.CancelReasonPlanDowngrade
	}

	n, err := h.scheduler.CancelFutureTenantNotificationJobs(r.Context(), barbershopID, req.Reason)
	if err != nil {
		h.logger.Error("POST /internal/barbershops/{id}/notifications/cancel-future - Failed: barbershop_id=%d, error=%v",
			barbershopID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /internal/barbershops/{id}/notifications/cancel-future - Done: barbershop_id=%d, canceled=%d",
		barbershopID, n)
	handlers.RespondJSON(w, http.StatusOK, CancelResponse{BarbershopID: barbershopID, Reason: req.Reason, CanceledJobs: n})
}
