package stripe_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-BarberBooking/internal/api/handlers"
	reconcilePayment "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
)

// HeaderSignature подпись события Stripe
const HeaderSignature = "Stripe-Signature"

// maxPayloadBytes события Stripe заметно меньше
const maxPayloadBytes = 64 << 10

const (
	msgInvalidPayload = "некорректное событие"
	msgConflict       = "событие не соответствует ни одному бронированию"
	msgRetryLater     = "временная ошибка, повторите доставку"
)

// AckResponse подтверждение приёма события
type AckResponse struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}

type Handler struct {
	useCase WebhookUseCase
	logger  Logger
}

func NewHandler(useCase WebhookUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/webhooks/stripe
// Подпись проверяется по сырому телу, поэтому тело не декодируется здесь.
// 5xx заставляет Stripe повторить доставку, 4xx - нет.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Warn("POST /webhooks/stripe - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	result, err := h.useCase.HandleWebhook(r.Context(), payload, r.Header.Get(HeaderSignature))
	if err != nil {
		switch {
		case errors.Is(err, reconcilePayment.ErrInvalidWebhook):
			handlers.RespondBadRequest(w, msgInvalidPayload)

		case errors.Is(err, reconcilePayment.ErrConflict):
			h.logger.Warn("POST /webhooks/stripe - Conflict: %v", err)
			handlers.RespondConflict(w, msgConflict)

		default:
			h.logger.Error("POST /webhooks/stripe - Failed to reconcile: %v", err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgRetryLater)
		}
		return
	}

	h.logger.Info("POST /webhooks/stripe - Processed: session=%s, booking_id=%d, outcome=%s",
		result.SessionID, result.BookingID, result.Outcome)
	handlers.RespondJSON(w, http.StatusOK, AckResponse{Received: true, Outcome: string(result.Outcome)})
}
