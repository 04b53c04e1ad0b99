package models

import (
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// JoinRequest запрос на запись в лист ожидания
type JoinRequest struct {
	UserID       int64  `json:"-"`
	BarbershopID int64  `json:"barbershopId" validate:"required,gt=0"`
	BarberID     int64  `json:"barberId" validate:"required,gt=0"`
	ServiceID    int64  `json:"serviceId" validate:"required,gt=0"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
}

// EntryResponse запись листа ожидания
type EntryResponse struct {
	ID                 int64      `json:"id"`
	BarbershopID       int64      `json:"barbershopId"`
	BarberID           int64      `json:"barberId"`
	ServiceID          int64      `json:"serviceId"`
	UserID             int64      `json:"userId"`
	Date               string     `json:"date"`
	Status             string     `json:"status"`
	FulfilledBookingID *int64     `json:"fulfilledBookingId,omitempty"`
	FulfilledAt        *time.Time `json:"fulfilledAt,omitempty"`
	FulfilledSeenAt    *time.Time `json:"fulfilledSeenAt,omitempty"`
	ExpiredAt          *time.Time `json:"expiredAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// EntryListResponse список записей пользователя
type EntryListResponse struct {
	Entries []EntryResponse `json:"entries"`
	// UnseenFulfilled сколько выполненных записей пользователь ещё не видел
	UnseenFulfilled int `json:"unseenFulfilled"`
}

// FromDomainEntry конвертирует domain модель в DTO
// DateDay хранится как полночь UTC, поэтому дата форматируется без зоны
func FromDomainEntry(e *domain.WaitlistEntry) EntryResponse {
	return EntryResponse{
		ID:                 e.ID,
		BarbershopID:       e.BarbershopID,
		BarberID:           e.BarberID,
		ServiceID:          e.ServiceID,
		UserID:             e.UserID,
		Date:               e.DateDay.UTC().Format(slottime.DateLayout),
		Status:             string(e.Status),
		FulfilledBookingID: e.FulfilledBookingID,
		FulfilledAt:        e.FulfilledAt,
		FulfilledSeenAt:    e.FulfilledSeenAt,
		ExpiredAt:          e.ExpiredAt,
		CreatedAt:          e.CreatedAt,
	}
}

// FromDomainEntryList конвертирует список записей
func FromDomainEntryList(entries []*domain.WaitlistEntry) *EntryListResponse {
	resp := &EntryListResponse{Entries: make([]EntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, FromDomainEntry(e))
		if e.Status == domain.WaitlistStatusFulfilled && e.FulfilledSeenAt == nil {
			resp.UnseenFulfilled++
		}
	}
	return resp
}
