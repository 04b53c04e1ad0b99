package twilio

import (
	"net/http"
	"time"
)

// Config настройки клиента рассылок
type Config struct {
	AccountSID string
	AuthToken  string
	From       string
	WhatsApp   bool
	Timeout    time.Duration
	// Transport подменяет HTTP транспорт, nil - транспорт по умолчанию
	Transport http.RoundTripper
}

const whatsAppPrefix = "whatsapp:"

// Коды ошибок провайдера, означающие неверный номер получателя
var invalidDestinationCodes = map[int]struct{}{
	21211: {}, // Invalid 'To' Phone Number
	21614: {}, // 'To' number is not a valid mobile number
	63003: {}, // Channel could not find To address
}
