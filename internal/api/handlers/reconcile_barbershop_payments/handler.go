package reconcile_barbershop_payments

import (
	"net/http"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
)

const msgInvalidBarbershopID = "некорректный ID барбершопа"

type Handler struct {
	useCase ReconcileUseCase
	logger  Logger
}

func NewHandler(useCase ReconcileUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/internal/barbershops/{barbershopId}/payments/reconcile
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	barbershopID, err := handlers.PathInt64(r, "barbershopId")
	if err != nil {
		h.logger.Warn("POST /internal/barbershops/{id}/payments/reconcile - Invalid barbershop ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarbershopID)
		return
	}

	summary, err := h.useCase.ReconcileForTenant(r.Context(), barbershopID)
	if err != nil {
		h.logger.Error("POST /internal/barbershops/{id}/payments/reconcile - Sweep failed: barbershop_id=%d, error=%v",
			barbershopID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /internal/barbershops/{id}/payments/reconcile - Done: barbershop_id=%d, run_id=%s, scanned=%d",
		barbershopID, summary.RunID, summary.Scanned)
	handlers.RespondJSON(w, http.StatusOK, summary)
}
