package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// Request модели

// UpdateMessagingRequest запрос на изменение тарифа и флагов сообщений
// Все поля опциональны - обновляются только переданные значения
type UpdateMessagingRequest struct {
	UserID             int64   `json:"-"`
	Plan               *string `json:"plan,omitempty" validate:"omitempty,oneof=BASIC PRO PREMIUM"`
	Enabled            *bool   `json:"enabled,omitempty"`
	ConfirmEnabled     *bool   `json:"confirmEnabled,omitempty"`
	Reminder24hEnabled *bool   `json:"reminder24hEnabled,omitempty"`
	Reminder1hEnabled  *bool   `json:"reminder1hEnabled,omitempty"`
}

// ApplyTo применяет переданные поля к настройкам
func (r *UpdateMessagingRequest) ApplyTo(settings *domain.MessagingSettings) {
	if r.Plan != nil {
		settings.Plan = domain.Plan(*r.Plan)
	}
	if r.Enabled != nil {
		settings.Enabled = *r.Enabled
	}
	if r.ConfirmEnabled != nil {
		settings.ConfirmEnabled = *r.ConfirmEnabled
	}
	if r.Reminder24hEnabled != nil {
		settings.Reminder24hEnabled = *r.Reminder24hEnabled
	}
	if r.Reminder1hEnabled != nil {
		settings.Reminder1hEnabled = *r.Reminder1hEnabled
	}
}

// DayHoursDTO часы работы одного дня недели
type DayHoursDTO struct {
	Weekday int    `json:"weekday" validate:"min=0,max=6"` // 0 - воскресенье
	Open    string `json:"open,omitempty"`                 // "09:00"
	Close   string `json:"close,omitempty"`                // "18:00"
	Closed  bool   `json:"closed"`
}

// UpdateWeeklyHoursRequest полная замена расписания
// Дни, которых нет в списке, считаются выходными
type UpdateWeeklyHoursRequest struct {
	UserID int64         `json:"-"`
	Days   []DayHoursDTO `json:"days" validate:"max=7,dive"`
}

// ToDomainHours конвертирует расписание в минуты от полуночи
func (r *UpdateWeeklyHoursRequest) ToDomainHours() (domain.WeeklyHours, error) {
	var hours domain.WeeklyHours
	for i := range hours {
		hours[i] = domain.DayHours{Closed: true}
	}

	seen := make(map[int]struct{}, len(r.Days))
	for _, d := range r.Days {
		if d.Weekday < 0 || d.Weekday > 6 {
			return hours, fmt.Errorf("weekday %d out of range", d.Weekday)
		}
		if _, dup := seen[d.Weekday]; dup {
			return hours, fmt.Errorf("weekday %d given twice", d.Weekday)
		}
		seen[d.Weekday] = struct{}{}

		if d.Closed {
			continue
		}

		open, err := parseMinute(d.Open)
		if err != nil {
			return hours, fmt.Errorf("weekday %d open: %v", d.Weekday, err)
		}
		closeMinute, err := parseMinute(d.Close)
		if err != nil {
			return hours, fmt.Errorf("weekday %d close: %v", d.Weekday, err)
		}
		if closeMinute <= open {
			return hours, fmt.Errorf("weekday %d closes before it opens", d.Weekday)
		}

		hours[d.Weekday] = domain.DayHours{OpenMinute: open, CloseMinute: closeMinute}
	}

	return hours, nil
}

// Response модели

// MessagingDTO настройки сообщений
type MessagingDTO struct {
	Plan               string `json:"plan"`
	Enabled            bool   `json:"enabled"`
	ConfirmEnabled     bool   `json:"confirmEnabled"`
	Reminder24hEnabled bool   `json:"reminder24hEnabled"`
	Reminder1hEnabled  bool   `json:"reminder1hEnabled"`
	// PlanSupportsMessaging тариф допускает автоматические сообщения
	PlanSupportsMessaging bool `json:"planSupportsMessaging"`
}

// ConfigResponse настройки барбершопа
type ConfigResponse struct {
	BarbershopID int64         `json:"barbershopId"`
	Name         string        `json:"name"`
	TimeZone     string        `json:"timeZone"`
	Messaging    MessagingDTO  `json:"messaging"`
	WeeklyHours  []DayHoursDTO `json:"weeklyHours"`
}

// UpdateMessagingResponse результат изменения настроек сообщений
type UpdateMessagingResponse struct {
	Messaging MessagingDTO `json:"messaging"`
	// CanceledJobs сколько будущих уведомлений снято из-за понижения тарифа
	CanceledJobs int64 `json:"canceledJobs"`
}

// Методы конвертации

// FromDomainMessaging конвертирует настройки сообщений в DTO
func FromDomainMessaging(m domain.MessagingSettings) MessagingDTO {
	return MessagingDTO{
		Plan:                  string(m.Plan),
		Enabled:               m.Enabled,
		ConfirmEnabled:        m.ConfirmEnabled,
		Reminder24hEnabled:    m.Reminder24hEnabled,
		Reminder1hEnabled:     m.Reminder1hEnabled,
		PlanSupportsMessaging: m.Plan.SupportsMessaging(),
	}
}

// FromDomainConfig собирает ответ из барбершопа и расписания
func FromDomainConfig(shop *domain.Barbershop, hours domain.WeeklyHours, zone slottime.Zone) *ConfigResponse {
	resp := &ConfigResponse{
		BarbershopID: shop.ID,
		Name:         shop.Name,
		TimeZone:     zone.Name(),
		Messaging:    FromDomainMessaging(shop.Messaging),
		WeeklyHours:  make([]DayHoursDTO, 0, len(hours)),
	}

	for weekday, day := range hours {
		dto := DayHoursDTO{Weekday: weekday, Closed: !day.IsOpen()}
		if day.IsOpen() {
			dto.Open = formatMinute(day.OpenMinute)
			dto.Close = formatMinute(day.CloseMinute)
		}
		resp.WeeklyHours = append(resp.WeeklyHours, dto)
	}

	return resp
}

func parseMinute(s string) (int, error) {
	t, err := time.Parse(slottime.TimeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
