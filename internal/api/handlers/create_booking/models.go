package create_booking

import (
	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	bookingModels "github.com/m04kA/SMC-BarberBooking/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-BarberBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	BarbershopID  int64   `json:"barbershopId" validate:"required,gt=0"`
	BarberID      int64   `json:"barberId" validate:"required,gt=0"`
	ServiceIDs    []int64 `json:"serviceIds" validate:"required,min=1,dive,gt=0"`
	StartAt       string  `json:"startAt" validate:"required,datetime=2006-01-02T15:04"` // "2025-10-15T10:00"
	PaymentMethod string  `json:"paymentMethod" validate:"required,oneof=IN_PERSON STRIPE"`
	CustomerEmail string  `json:"customerEmail,omitempty" validate:"omitempty,email"`
}

// CreateBookingResponse бронирование и, для STRIPE, страница оплаты
type CreateBookingResponse struct {
	*bookingModels.BookingResponse
	CheckoutURL string `json:"checkoutUrl,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) *createBooking.Request {
	return &createBooking.Request{
		UserID:        userID,
		BarbershopID:  r.BarbershopID,
		BarberID:      r.BarberID,
		ServiceIDs:    r.ServiceIDs,
		StartAt:       r.StartAt,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		CustomerEmail: r.CustomerEmail,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response, zone slottime.Zone) *CreateBookingResponse {
	return &CreateBookingResponse{
		BookingResponse: bookingModels.FromDomainBooking(resp.Booking, zone),
		CheckoutURL:     resp.CheckoutURL,
	}
}
