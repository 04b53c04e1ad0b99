package reconcile_user_payments

import (
	"net/http"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
)

const msgMissingUserID = "отсутствует ID пользователя"

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

// Handle POST /api/v1/payments/reconcile
// Сверяет все неподтверждённые оплаты текущего пользователя
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	summary, err := h.useCase.ReconcileForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("POST /payments/reconcile - Sweep failed: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /payments/reconcile - Done: user_id=%d, run_id=%s, scanned=%d, paid=%d, failed=%d, errors=%d",
		userID, summary.RunID, summary.Scanned, summary.Paid, summary.Failed, len(summary.Errors))
	handlers.RespondJSON(w, http.StatusOK, summary)
}
