package domain

// GateDecision можно ли отправлять сообщение данного типа
type GateDecision struct {
	Allowed bool
	Reason  string
}

// CheckMessagingGate проверяет тариф, общий флаг рассылок и флаг конкретного типа
func CheckMessagingGate(settings MessagingSettings, jobType NotificationJobType) GateDecision {
	if !settings.Plan.SupportsMessaging() {
		return GateDecision{Reason: GateReasonPlanNotSupported}
	}
	if !settings.Enabled {
		return GateDecision{Reason: GateReasonMessagingDisabled}
	}

	switch jobType {
	case JobTypeBookingConfirm:
		if !settings.ConfirmEnabled {
			return GateDecision{Reason: GateReasonConfirmDisabled}
		}
	case JobTypeReminder24h:
		if !settings.Reminder24hEnabled {
			return GateDecision{Reason: GateReasonReminder24Disabled}
		}
	case JobTypeReminder1h:
		if !settings.Reminder1hEnabled {
			return GateDecision{Reason: GateReasonReminder1Disabled}
		}
	default:
		return GateDecision{Reason: "unknown_job_type"}
	}

	return GateDecision{Allowed: true}
}
