package reconcile_payment

import (
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// Source кто запустил сверку
type Source string

const (
	SourceWebhook     Source = "webhook"
	SourceManual      Source = "manual"
	SourceSweepUser   Source = "sweep_user"
	SourceSweepTenant Source = "sweep_tenant"
)

// Outcome итог сверки одного бронирования
type Outcome string

const (
	OutcomeMarkedPaid   Outcome = "marked_paid"
	OutcomeMarkedFailed Outcome = "marked_failed"
	OutcomeUnchanged    Outcome = "unchanged"
	OutcomePending      Outcome = "pending"
	OutcomeManualReview Outcome = "manual_review"
	OutcomeIgnored      Outcome = "ignored"
)

// Hint что известно о сессии до запроса к провайдеру
type Hint struct {
	Source Source
	// ExpectPaid событие провайдера утверждает, что сессия оплачена
	ExpectPaid bool
	// UserID если задан, бронирование должно принадлежать пользователю
	UserID *int64
}

// Result итог сверки по одной checkout-сессии
type Result struct {
	BookingID      int64
	SessionID      string
	Outcome        Outcome
	Transition     domain.TransitionKind
	Reason         string
	PaymentStatus  domain.PaymentStatus
	JobsScheduled  int
	JobsCanceled   int64
	WaitlistReason string
}

// Options ограничения сверки пачкой
type Options struct {
	Lookback    time.Duration
	MinAge      time.Duration
	UserLimit   int
	TenantLimit int
	ItemTimeout time.Duration
}

// ItemError ошибка по одному бронированию в пачке
type ItemError struct {
	BookingID int64  `json:"bookingId"`
	SessionID string `json:"sessionId"`
	Error     string `json:"error"`
}

// SweepSummary итог сверки пачкой
type SweepSummary struct {
	RunID        string      `json:"runId"`
	Scanned      int         `json:"scanned"`
	Paid         int         `json:"paid"`
	Failed       int         `json:"failed"`
	Unchanged    int         `json:"unchanged"`
	Pending      int         `json:"pending"`
	ManualReview int         `json:"manualReview"`
	Errors       []ItemError `json:"errors"`
}

func (s *SweepSummary) add(res *Result) {
	switch res.Outcome {
	case OutcomeMarkedPaid:
		s.Paid++
	case OutcomeMarkedFailed:
		s.Failed++
	case OutcomePending:
		s.Pending++
	case OutcomeManualReview:
		s.ManualReview++
	default:
		s.Unchanged++
	}
}
