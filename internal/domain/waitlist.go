package domain

import "time"

// WaitlistStatus статус записи в листе ожидания
type WaitlistStatus string

const (
	WaitlistStatusActive    WaitlistStatus = "ACTIVE"
	WaitlistStatusFulfilled WaitlistStatus = "FULFILLED"
	WaitlistStatusExpired   WaitlistStatus = "EXPIRED"
)

// WaitlistEntry запрос клиента на запись в занятый день
// Порядок обработки строго FIFO по (CreatedAt, ID), выход из ACTIVE необратим
type WaitlistEntry struct {
	ID                 int64
	BarbershopID       int64
	BarberID           int64
	ServiceID          int64
	UserID             int64
	DateDay            time.Time // календарный день, полночь UTC
	Status             WaitlistStatus
	FulfilledBookingID *int64
	FulfilledAt        *time.Time
	ExpiredAt          *time.Time
	FulfilledSeenAt    *time.Time
	CreatedAt          time.Time
}

// IsActive returns true if the entry is still waiting
func (e *WaitlistEntry) IsActive() bool {
	return e.Status == WaitlistStatusActive
}

// WaitlistKey по чему подбирается запись для освободившегося слота
type WaitlistKey struct {
	BarbershopID int64
	BarberID     int64
	ServiceID    int64
	DateDay      time.Time
}
