package create_booking

import (
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// Settings параметры записи
type Settings struct {
	StepMinutes    int
	Buffer         time.Duration
	MaxAdvanceDays int
}

// Request модель запроса на создание бронирования
type Request struct {
	UserID        int64
	BarbershopID  int64
	BarberID      int64
	ServiceIDs    []int64
	StartAt       string // "YYYY-MM-DDTHH:MM" по местному времени
	PaymentMethod domain.PaymentMethod
	CustomerEmail string // для checkout-сессии, опционально
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
	// CheckoutURL страница оплаты, только для STRIPE
	CheckoutURL string
}
