package reconcile_session

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	reconcilePayment "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
)

const (
	msgMissingSessionID = "отсутствует ID сессии"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "сессия оплаты не найдена"
	msgConflict         = "состояние оплаты противоречит данным провайдера"
	msgProvider         = "платёжный сервис недоступен, попробуйте позже"
)

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

// Handle POST /api/v1/payments/sessions/{sessionId}/reconcile
// Клиент после возврата со страницы оплаты, сверяются только его бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	if sessionID == "" {
		handlers.RespondBadRequest(w, msgMissingSessionID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.ReconcileBySessionID(r.Context(), sessionID, reconcilePayment.Hint{
		Source: reconcilePayment.SourceManual,
		UserID: &userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, reconcilePayment.ErrSessionNotFound),
			errors.Is(err, reconcilePayment.ErrBookingNotFound):
			h.logger.Warn("POST /payments/sessions/{id}/reconcile - Not found: session=%s, user_id=%d",
				sessionID, userID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reconcilePayment.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgMissingSessionID)

		case errors.Is(err, reconcilePayment.ErrConflict):
			h.logger.Warn("POST /payments/sessions/{id}/reconcile - Conflict: session=%s, error=%v", sessionID, err)
			handlers.RespondConflict(w, msgConflict)

		case errors.Is(err, reconcilePayment.ErrProvider):
			h.logger.Error("POST /payments/sessions/{id}/reconcile - Provider error: session=%s, error=%v",
				sessionID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgProvider)

		default:
			h.logger.Error("POST /payments/sessions/{id}/reconcile - Failed: session=%s, error=%v", sessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/sessions/{id}/reconcile - Done: session=%s, booking_id=%d, outcome=%s",
		sessionID, result.BookingID, result.Outcome)
	handlers.RespondJSON(w, http.StatusOK, FromResult(result))
}
