package stripe

import "time"

// Config настройки клиента платёжного провайдера
type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
	SessionTTL    time.Duration
	Timeout       time.Duration
	MaxRetries    int64
	// BaseURL переопределяет адрес API, пусто - боевой адрес провайдера
	BaseURL string
}

// CheckoutRequest данные для создания checkout-сессии бронирования
type CheckoutRequest struct {
	BookingID     int64
	UserID        int64
	Description   string
	AmountInCents int64
	CustomerEmail string
}

const (
	metadataBookingID = "booking_id"
	metadataUserID    = "user_id"

	expandLatestCharge = "payment_intent.latest_charge"

	// провайдер не принимает срок жизни сессии меньше 30 минут
	minSessionTTL = 30 * time.Minute
)
