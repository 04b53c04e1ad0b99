package domain

import "time"

// Plan тарифный план барбершопа
type Plan string

const (
	PlanBasic   Plan = "BASIC"
	PlanPro     Plan = "PRO"
	PlanPremium Plan = "PREMIUM"
)

// IsValid тариф из известного списка
func (p Plan) IsValid() bool {
	switch p {
	case PlanBasic, PlanPro, PlanPremium:
		return true
	}
	return false
}

// SupportsMessaging автоматические сообщения клиентам доступны с тарифа PRO
func (p Plan) SupportsMessaging() bool {
	return p == PlanPro || p == PlanPremium
}

// DayHours часы работы в один день недели, в минутах от локальной полуночи
type DayHours struct {
	OpenMinute  int
	CloseMinute int
	Closed      bool
}

// IsOpen returns true if the barbershop works this day
func (d DayHours) IsOpen() bool {
	return !d.Closed && d.CloseMinute > d.OpenMinute
}

// WeeklyHours расписание по дням недели, индекс - time.Weekday
type WeeklyHours [7]DayHours

// For возвращает часы работы на день недели
func (w WeeklyHours) For(day time.Weekday) DayHours {
	return w[day]
}

// MessagingSettings настройки автоматических сообщений барбершопа
type MessagingSettings struct {
	Plan               Plan
	Enabled            bool
	ConfirmEnabled     bool
	Reminder24hEnabled bool
	Reminder1hEnabled  bool
}

// Service услуга барбершопа
type Service struct {
	ID              int64
	BarbershopID    int64
	Name            string
	DurationMinutes int
	PriceInCents    int64
	Active          bool
}

// Barbershop барбершоп (тенант)
type Barbershop struct {
	ID        int64
	Name      string
	OwnerID   int64
	Messaging MessagingSettings
}
