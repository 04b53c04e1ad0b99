package dispatch_notifications

import (
	"net/http"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
)

type Handler struct {
	useCase DispatchUseCase
	logger  Logger
}

func NewHandler(useCase DispatchUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/internal/notifications/dispatch
// Один прогон диспетчера, вызывается внешним cron
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	summary, err := h.useCase.Run(r.Context())
	if err != nil {
		h.logger.Error("POST /internal/notifications/dispatch - Run failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /internal/notifications/dispatch - Done: run_id=%s, scanned=%d, sent=%d, retried=%d, failed=%d",
		summary.RunID, summary.Scanned, summary.Sent, summary.Retried, summary.Failed)
	handlers.RespondJSON(w, http.StatusOK, summary)
}
