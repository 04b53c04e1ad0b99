package domain

import "time"

// Default configuration values
const (
	DefaultSlotStepMinutes         = 30
	DefaultBookingBuffer           = 5 * time.Minute
	DefaultWaitlistMaxAttempts     = 100
	DefaultNotificationMaxAttempts = 5
)

// Business validation constants
const (
	MinServiceDurationMinutes   = 5
	MaxBookingDurationMinutes   = 720 // 12 hours
	MaxServicesPerBooking       = 10
	MaxCancellationReasonLength = 500
	MaxLastErrorLength          = 500
)

// Причины отмены бронирований и задач уведомлений
const (
	CancelReasonBookingCanceled = "booking_canceled"
	CancelReasonPaymentFailed   = "payment_failed"
	CancelReasonPlanDowngrade   = "plan_downgrade"
	CancelReasonCheckoutFailed  = "checkout_failed"
)

// Причины блокировки уведомлений настройками тенанта
const (
	GateReasonPlanNotSupported   = "plan_not_supported"
	GateReasonMessagingDisabled  = "messaging_disabled"
	GateReasonConfirmDisabled    = "confirm_disabled"
	GateReasonReminder24Disabled = "reminder_24h_disabled"
	GateReasonReminder1Disabled  = "reminder_1h_disabled"
)
