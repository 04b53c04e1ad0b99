package dispatch_notifications

import (
	"strings"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

var bodies = map[domain.NotificationJobType]string{
	domain.JobTypeBookingConfirm: "Olá, [CustomerName]! Seu horário na [Barbershop] está confirmado: [Service] em [Date] às [Time][Barber].",
	domain.JobTypeReminder24h:    "Olá, [CustomerName]! Lembrete: amanhã, [Date] às [Time], você tem [Service] na [Barbershop][Barber].",
	domain.JobTypeReminder1h:     "Olá, [CustomerName]! Seu horário na [Barbershop] começa em 1 hora, às [Time][Barber].",
}

// buildMessage собирает сообщение: шаблон провайдера с переменными и текст на случай его отсутствия
func buildMessage(jobType domain.NotificationJobType, to string, nctx *domain.NotificationContext, zone slottime.Zone, templates Templates) domain.OutboundMessage {
	date := zone.FormatDate(nctx.Booking.StartAt)
	clock := zone.FormatTime(nctx.Booking.StartAt)

	barber := ""
	if nctx.BarberName != "" {
		barber = " com " + nctx.BarberName
	}

	replacer := strings.NewReplacer(
		"[CustomerName]", nctx.CustomerName,
		"[Barbershop]", nctx.BarbershopName,
		"[Service]", nctx.ServiceName,
		"[Date]", date,
		"[Time]", clock,
		"[Barber]", barber,
	)

	msg := domain.OutboundMessage{
		To:   to,
		Body: replacer.Replace(bodies[jobType]),
	}

	if sid := templates.forType(jobType); sid != "" {
		msg.ContentSID = sid
		msg.ContentVariables = map[string]string{
			"1": nctx.CustomerName,
			"2": nctx.BarbershopName,
			"3": date,
			"4": clock,
			"5": nctx.ServiceName,
			"6": nctx.BarberName,
		}
	}

	return msg
}

func (t Templates) forType(jobType domain.NotificationJobType) string {
	switch jobType {
	case domain.JobTypeBookingConfirm:
		return t.Confirm
	case domain.JobTypeReminder24h:
		return t.Reminder24h
	case domain.JobTypeReminder1h:
		return t.Reminder1h
	}
	return ""
}
