package domain

import "time"

// PaymentEventKind что сообщил платёжный провайдер
type PaymentEventKind string

const (
	PaymentEventPaid   PaymentEventKind = "paid"
	PaymentEventFailed PaymentEventKind = "failed"
)

// PaymentEvent нормализованный сигнал провайдера по одному бронированию
type PaymentEvent struct {
	Kind     PaymentEventKind
	ChargeID string
}

// TransitionKind результат применения события к бронированию
type TransitionKind string

const (
	TransitionMarkPaid          TransitionKind = "mark_paid"
	TransitionMarkFailed        TransitionKind = "mark_failed"
	TransitionAlreadyPaid       TransitionKind = "already_paid"
	TransitionAlreadyFailed     TransitionKind = "already_failed"
	TransitionChargeConflict    TransitionKind = "charge_conflict"
	TransitionIgnoredFailedPaid TransitionKind = "ignored_failed_on_paid"
	TransitionPaidAfterFailure  TransitionKind = "paid_after_failure"
	TransitionNotApplicable     TransitionKind = "not_applicable"
)

// PaymentTransition решение автомата оплаты
type PaymentTransition struct {
	Kind   TransitionKind
	Reason string
}

// IsProductive переход меняет состояние бронирования и влечёт побочные эффекты
func (t PaymentTransition) IsProductive() bool {
	return t.Kind == TransitionMarkPaid || t.Kind == TransitionMarkFailed
}

// NeedsReview противоречивое состояние, которое автоматически не разрешается
func (t PaymentTransition) NeedsReview() bool {
	return t.Kind == TransitionChargeConflict || t.Kind == TransitionPaidAfterFailure
}

// DecidePaymentTransition автомат состояний оплаты
//
//	PENDING + paid   -> PAID (нужен charge id)
//	PENDING + failed -> FAILED
//	PAID    + paid   -> no-op при том же charge id, иначе конфликт
//	PAID    + failed -> игнорируется
//	FAILED  + failed -> no-op
//	FAILED  + paid   -> ручной разбор
func DecidePaymentTransition(b *Booking, ev PaymentEvent) PaymentTransition {
	if b.PaymentMethod != PaymentMethodStripe {
		return PaymentTransition{Kind: TransitionNotApplicable, Reason: "payment method is not STRIPE"}
	}

	switch b.PaymentStatus {
	case PaymentStatusPending:
		switch ev.Kind {
		case PaymentEventPaid:
			if ev.ChargeID == "" {
				return PaymentTransition{Kind: TransitionNotApplicable, Reason: "charge id unresolved"}
			}
			return PaymentTransition{Kind: TransitionMarkPaid}
		case PaymentEventFailed:
			return PaymentTransition{Kind: TransitionMarkFailed}
		}

	case PaymentStatusPaid:
		switch ev.Kind {
		case PaymentEventPaid:
			if b.StripeChargeID != nil && ev.ChargeID != "" && *b.StripeChargeID != ev.ChargeID {
				return PaymentTransition{Kind: TransitionChargeConflict, Reason: "stored charge " + *b.StripeChargeID + ", received " + ev.ChargeID}
			}
			return PaymentTransition{Kind: TransitionAlreadyPaid}
		case PaymentEventFailed:
			return PaymentTransition{Kind: TransitionIgnoredFailedPaid, Reason: "booking already paid"}
		}

	case PaymentStatusFailed:
		switch ev.Kind {
		case PaymentEventFailed:
			return PaymentTransition{Kind: TransitionAlreadyFailed}
		case PaymentEventPaid:
			return PaymentTransition{Kind: TransitionPaidAfterFailure, Reason: "paid session for failed booking, charge " + ev.ChargeID}
		}
	}

	return PaymentTransition{Kind: TransitionNotApplicable, Reason: "unknown status or event"}
}

// ProviderSessionStatus статус checkout-сессии у провайдера
type ProviderSessionStatus string

const (
	SessionStatusOpen     ProviderSessionStatus = "open"
	SessionStatusComplete ProviderSessionStatus = "complete"
	SessionStatusExpired  ProviderSessionStatus = "expired"
)

// ProviderSession авторитетное состояние checkout-сессии у провайдера
type ProviderSession struct {
	ID              string
	Status          ProviderSessionStatus
	PaymentStatus   string // paid, unpaid, no_payment_required
	PaymentIntentID string
	ChargeID        string
	BookingID       *int64 // из metadata или client_reference_id
	URL             string
	ExpiresAt       time.Time
}

// IsPaid returns true if the session has been paid
func (s *ProviderSession) IsPaid() bool {
	return s.PaymentStatus == "paid"
}

// IsExpired returns true if the session expired without payment
func (s *ProviderSession) IsExpired() bool {
	return s.Status == SessionStatusExpired && !s.IsPaid()
}

// PaymentEvent переводит состояние сессии в событие автомата
// false - сессия ещё в процессе, решать нечего
func (s *ProviderSession) PaymentEvent() (PaymentEvent, bool) {
	switch {
	case s.IsPaid():
		return PaymentEvent{Kind: PaymentEventPaid, ChargeID: s.ChargeID}, true
	case s.IsExpired():
		return PaymentEvent{Kind: PaymentEventFailed}, true
	default:
		return PaymentEvent{}, false
	}
}

// ProviderEventKind тип webhook события
type ProviderEventKind string

const (
	ProviderEventCompleted             ProviderEventKind = "checkout.session.completed"
	ProviderEventExpired               ProviderEventKind = "checkout.session.expired"
	ProviderEventAsyncPaymentFailed    ProviderEventKind = "checkout.session.async_payment_failed"
	ProviderEventAsyncPaymentSucceeded ProviderEventKind = "checkout.session.async_payment_succeeded"
)

// ProviderEvent проверенное webhook событие по одной сессии
type ProviderEvent struct {
	ID        string
	Kind      ProviderEventKind
	SessionID string
}

// IsSupported событие относится к checkout-сессиям
func (e ProviderEvent) IsSupported() bool {
	switch e.Kind {
	case ProviderEventCompleted, ProviderEventExpired, ProviderEventAsyncPaymentFailed, ProviderEventAsyncPaymentSucceeded:
		return true
	}
	return false
}
