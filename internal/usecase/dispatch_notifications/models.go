package dispatch_notifications

import "time"

// Templates content SID шаблонов по типам сообщений, пустой SID - обычный текст
type Templates struct {
	Confirm     string
	Reminder24h string
	Reminder1h  string
}

// Options параметры прогона рассылки
type Options struct {
	MaxAttempts        int
	BatchSize          int
	MaxJobsPerRun      int
	BackoffBase        time.Duration
	BackoffMax         time.Duration
	SendTimeout        time.Duration
	DefaultCountryCode string
	Templates          Templates
}

// Summary итог одного прогона
type Summary struct {
	RunID        string `json:"runId"`
	Scanned      int    `json:"scanned"`
	Sent         int    `json:"sent"`
	Retried      int    `json:"retried"`
	Failed       int    `json:"failed"`
	Canceled     int    `json:"canceled"`
	ClaimSkipped int    `json:"claimSkipped"`
	Errors       int    `json:"errors"`
}

// Исходы обработки задачи для метрик
const (
	outcomeSent         = "sent"
	outcomeRetried      = "retried"
	outcomeFailed       = "failed"
	outcomeCanceled     = "canceled"
	outcomeClaimSkipped = "claim_skipped"
	outcomeError        = "error"
)

// Причины отмены задач самим диспетчером
const (
	cancelReasonContextNotFound = "booking_not_found"
	cancelReasonNotPaid         = "booking_not_paid"
)

const errInvalidPhone = "invalid phone number"
