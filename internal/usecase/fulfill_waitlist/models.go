package fulfill_waitlist

import (
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// ReleasedSlot освободившийся слот мастера
type ReleasedSlot struct {
	BarbershopID int64
	BarberID     *int64
	ServiceID    int64
	StartAt      time.Time
	// DurationMinutes длительность слота, 0 - взять длительность услуги
	DurationMinutes int
}

// Reason исход попытки выдать слот
type Reason string

const (
	ReasonFulfilled          Reason = "fulfilled"
	ReasonNoBarber           Reason = "no-barber"
	ReasonInvalidDay         Reason = "invalid-day"
	ReasonInvalidDuration    Reason = "invalid-duration"
	ReasonNoActiveEntry      Reason = "no-active-entry"
	ReasonSlotTaken          Reason = "slot-taken"
	ReasonMaxAttemptsReached Reason = "max-attempts-reached"
)

// Result результат выдачи слота из листа ожидания
type Result struct {
	Reason    Reason
	EntryID   int64
	BookingID int64
	UserID    int64
	// Attempts сколько записей было просмотрено
	Attempts int
	// Expired сколько записей истекло из-за несовпадения длительности
	Expired int
}

// Fulfilled returns true if a waitlisted customer got the slot
func (r *Result) Fulfilled() bool {
	return r.Reason == ReasonFulfilled
}

// SlotFromBooking слот, который освобождает отменённое бронирование
func SlotFromBooking(b *domain.Booking) ReleasedSlot {
	var barberID *int64
	if b.BarberID != nil {
		id := *b.BarberID
		barberID = &id
	}
	return ReleasedSlot{
		BarbershopID:    b.BarbershopID,
		BarberID:        barberID,
		ServiceID:       b.ServiceID,
		StartAt:         b.StartAt,
		DurationMinutes: b.TotalDurationMinutes,
	}
}
