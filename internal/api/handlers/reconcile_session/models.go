package reconcile_session

import (
	reconcilePayment "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
)

// ReconcileResponse итог сверки одной сессии
type ReconcileResponse struct {
	BookingID      int64  `json:"bookingId"`
	SessionID      string `json:"sessionId"`
	Outcome        string `json:"outcome"`
	Transition     string `json:"transition,omitempty"`
	Reason         string `json:"reason,omitempty"`
	PaymentStatus  string `json:"paymentStatus,omitempty"`
	JobsScheduled  int    `json:"jobsScheduled"`
	JobsCanceled   int64  `json:"jobsCanceled"`
	WaitlistReason string `json:"waitlistReason,omitempty"`
}

// FromResult конвертирует ответ use case в HTTP response
func FromResult(res *reconcilePayment.Result) *ReconcileResponse {
	return &ReconcileResponse{
		BookingID:      res.BookingID,
		SessionID:      res.SessionID,
		Outcome:        string(res.Outcome),
		Transition:     string(res.Transition),
		Reason:         res.Reason,
		PaymentStatus:  string(res.PaymentStatus),
		JobsScheduled:  res.JobsScheduled,
		JobsCanceled:   res.JobsCanceled,
		WaitlistReason: res.WaitlistReason,
	}
}
