package domain

import (
	"time"
)

// NotificationJobType тип исходящего сообщения
type NotificationJobType string

const (
	JobTypeBookingConfirm NotificationJobType = "BOOKING_CONFIRM"
	JobTypeReminder24h    NotificationJobType = "REMINDER_24H"
	JobTypeReminder1h     NotificationJobType = "REMINDER_1H"
)

// NotificationJobStatus статус задачи уведомления
type NotificationJobStatus string

const (
	JobStatusPending  NotificationJobStatus = "PENDING"
	JobStatusSending  NotificationJobStatus = "SENDING"
	JobStatusSent     NotificationJobStatus = "SENT"
	JobStatusFailed   NotificationJobStatus = "FAILED"
	JobStatusCanceled NotificationJobStatus = "CANCELED"
)

// NotificationJob одна запланированная отправка сообщения по бронированию
// Не больше одной задачи на (BookingID, Type), Attempts только растёт
type NotificationJob struct {
	ID           int64
	BookingID    int64
	BarbershopID int64
	Type         NotificationJobType
	Status       NotificationJobStatus
	ScheduledAt  time.Time
	Attempts     int
	LastError    *string
	SentAt       *time.Time
	CanceledAt   *time.Time
	CancelReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminal задача больше не будет отправляться
func (j *NotificationJob) IsTerminal() bool {
	return j.Status == JobStatusSent || j.Status == JobStatusFailed || j.Status == JobStatusCanceled
}

// JobCursor позиция keyset-пагинации по (ScheduledAt, ID)
type JobCursor struct {
	ScheduledAt time.Time
	ID          int64
}

// PlannedJob задача к созданию
type PlannedJob struct {
	Type        NotificationJobType
	ScheduledAt time.Time
}

// PlanNotificationJobs кандидаты на отправку для подтверждённого бронирования
// Подтверждение отправляется сразу, напоминания за 24ч и за 1ч до начала.
// Напоминание, время которого уже прошло, не планируется. Задачи, закрытые
// настройками тенанта, отбрасываются.
func PlanNotificationJobs(startAt, now time.Time, settings MessagingSettings) []PlannedJob {
	candidates := []PlannedJob{
		{Type: JobTypeReminder24h, ScheduledAt: startAt.Add(-24 * time.Hour)},
		{Type: JobTypeReminder1h, ScheduledAt: startAt.Add(-time.Hour)},
	}

	planned := make([]PlannedJob, 0, 3)
	if startAt.After(now) && CheckMessagingGate(settings, JobTypeBookingConfirm).Allowed {
		planned = append(planned, PlannedJob{Type: JobTypeBookingConfirm, ScheduledAt: now})
	}

	for _, c := range candidates {
		if !c.ScheduledAt.After(now) {
			continue
		}
		if !CheckMessagingGate(settings, c.Type).Allowed {
			continue
		}
		planned = append(planned, c)
	}

	return planned
}

// NotificationContext всё, что нужно для планирования и отправки сообщения по бронированию
type NotificationContext struct {
	Booking        *Booking
	CustomerName   string
	CustomerPhone  string
	BarbershopName string
	BarberName     string
	ServiceName    string
	Messaging      MessagingSettings
}

// OutboundMessage сообщение для провайдера рассылок
type OutboundMessage struct {
	To               string
	ContentSID       string
	ContentVariables map[string]string
	Body             string
}

// RetryBackoff задержка перед следующей попыткой: base * 2^(attempts-1), не больше max
func RetryBackoff(attempts int, base, max time.Duration) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := base
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

// TruncateError обрезает текст ошибки для хранения в last_error
func TruncateError(msg string, limit int) string {
	runes := []rune(msg)
	if len(runes) <= limit {
		return msg
	}
	return string(runes[:limit])
}
