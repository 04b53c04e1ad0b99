package domain

import (
	"time"
)

// PaymentMethod способ оплаты бронирования
type PaymentMethod string

const (
	PaymentMethodStripe   PaymentMethod = "STRIPE"
	PaymentMethodInPerson PaymentMethod = "IN_PERSON"
)

// IsValid проверяет, что способ оплаты поддерживается
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodStripe || m == PaymentMethodInPerson
}

// PaymentStatus статус оплаты бронирования
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// BookingSource откуда появилось бронирование
type BookingSource string

const (
	BookingSourceDirect   BookingSource = "DIRECT"
	BookingSourceWaitlist BookingSource = "WAITLIST"
)

// Booking бронирование времени мастера клиентом
type Booking struct {
	ID           int64
	BarbershopID int64
	BarberID     *int64 // у бронирований из листа ожидания всегда заполнен
	ServiceID    int64
	ServiceIDs   []int64 // полный набор услуг, ServiceID - первая из них
	UserID       int64

	Date                 time.Time // календарный день в зоне барбершопа (полночь UTC)
	StartAt              time.Time
	EndAt                time.Time
	TotalDurationMinutes int
	TotalPriceInCents    int64

	PaymentMethod      PaymentMethod
	PaymentStatus      PaymentStatus
	StripeSessionID    *string
	StripeChargeID     *string
	PaymentConfirmedAt *time.Time

	CancelledAt        *time.Time
	CancellationReason *string

	Source BookingSource

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.CancelledAt != nil
}

// IsPaid returns true if the payment has been confirmed
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

// IsActive занимает ли бронирование слот мастера
func (b *Booking) IsActive() bool {
	return !b.IsCancelled()
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return !b.IsCancelled() && b.PaymentStatus != PaymentStatusFailed
}

// HasStarted бронирование уже началось
func (b *Booking) HasStarted(now time.Time) bool {
	return !now.Before(b.StartAt)
}

// Interval занимаемый бронированием интервал [StartAt, EndAt)
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartAt, End: b.EndAt}
}

// ApplyPaid переводит бронирование в PAID
// Оплата восстанавливает бронирование, даже если до этого оно было отменено
func (b *Booking) ApplyPaid(chargeID string, now time.Time) {
	b.PaymentStatus = PaymentStatusPaid
	b.StripeChargeID = &chargeID
	b.PaymentConfirmedAt = &now
	b.CancelledAt = nil
	b.CancellationReason = nil
	b.UpdatedAt = now
}

// ApplyFailed переводит бронирование в FAILED и освобождает слот
func (b *Booking) ApplyFailed(now time.Time) {
	b.PaymentStatus = PaymentStatusFailed
	b.PaymentConfirmedAt = nil
	if b.CancelledAt == nil {
		b.CancelledAt = &now
		reason := CancelReasonPaymentFailed
		b.CancellationReason = &reason
	}
	b.UpdatedAt = now
}

// ApplyCancelled мягкая отмена бронирования
func (b *Booking) ApplyCancelled(reason string, now time.Time) {
	b.CancelledAt = &now
	if reason != "" {
		b.CancellationReason = &reason
	}
	b.UpdatedAt = now
}

// PendingPaymentFilter выборка неподтверждённых STRIPE бронирований для сверки
type PendingPaymentFilter struct {
	UserID        *int64
	BarbershopID  *int64
	CreatedAfter  time.Time // нижняя граница окна просмотра
	CreatedBefore time.Time // бронирования моложе этого момента ещё ждут webhook
	Limit         int
}
