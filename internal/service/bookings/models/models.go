package models

import (
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"-"`
	CancellationReason string `json:"cancellationReason" validate:"max=500"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	RequesterID int64 `json:"-"`
	UserID      int64 `json:"userId"`
	// ActiveOnly только неотменённые
	ActiveOnly bool `json:"activeOnly,omitempty"`
}

// GetBarbershopBookingsRequest запрос владельца на бронирования барбершопа за период
type GetBarbershopBookingsRequest struct {
	UserID          int64  `json:"-"`
	BarbershopID    int64  `json:"barbershopId"`
	StartDate       string `json:"startDate"`         // "2025-10-15", пусто - сегодня
	EndDate         string `json:"endDate,omitempty"` // включительно, пусто - равен StartDate
	IncludeInactive bool   `json:"includeInactive,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
// Даты и время отдаются в зоне барбершопа
type BookingResponse struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"userId"`
	BarbershopID int64   `json:"barbershopId"`
	BarberID     *int64  `json:"barberId,omitempty"`
	ServiceID    int64   `json:"serviceId"`
	ServiceIDs   []int64 `json:"serviceIds"`

	Date               string  `json:"date"`      // "2025-10-15"
	StartTime          string  `json:"startTime"` // "10:00"
	EndTime            string  `json:"endTime"`
	StartAt            string  `json:"startAt"` // "2025-10-15T10:00"
	DurationMinutes    int     `json:"durationMinutes"`
	TotalPriceInCents  int64   `json:"totalPriceInCents"`
	PaymentMethod      string  `json:"paymentMethod"`
	PaymentStatus      string  `json:"paymentStatus"`
	Source             string  `json:"source"`
	StripeSessionID    *string `json:"stripeSessionId,omitempty"`
	PaymentConfirmedAt *string `json:"paymentConfirmedAt,omitempty"` // ISO 8601 format

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking, zone slottime.Zone) *BookingResponse {
	if b == nil {
		return nil
	}

	serviceIDs := b.ServiceIDs
	if len(serviceIDs) == 0 {
		serviceIDs = []int64{b.ServiceID}
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		UserID:             b.UserID,
		BarbershopID:       b.BarbershopID,
		BarberID:           b.BarberID,
		ServiceID:          b.ServiceID,
		ServiceIDs:         serviceIDs,
		Date:               zone.FormatDate(b.StartAt),
		StartTime:          zone.FormatTime(b.StartAt),
		EndTime:            zone.FormatTime(b.EndAt),
		StartAt:            zone.FormatLocalDateTime(b.StartAt),
		DurationMinutes:    b.TotalDurationMinutes,
		TotalPriceInCents:  b.TotalPriceInCents,
		PaymentMethod:      string(b.PaymentMethod),
		PaymentStatus:      string(b.PaymentStatus),
		Source:             string(b.Source),
		StripeSessionID:    b.StripeSessionID,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	resp.PaymentConfirmedAt = formatInstant(b.PaymentConfirmedAt)
	resp.CancelledAt = formatInstant(b.CancelledAt)

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, zone slottime.Zone) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b, zone))
	}

	return resp
}

func formatInstant(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
