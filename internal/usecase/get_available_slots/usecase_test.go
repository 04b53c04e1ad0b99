package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	barbershopRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/barbershop"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

var zone = slottime.MustZone("America/Sao_Paulo")

type fakeBarbershops struct {
	hours    domain.WeeklyHours
	services map[int64]*domain.Service
	barbers  map[int64]int64
}

func (f *fakeBarbershops) GetByID(_ context.Context, id int64) (*domain.Barbershop, error) {
	if id != 1 {
		return nil, barbershopRepo.ErrBarbershopNotFound
	}
	return &domain.Barbershop{ID: 1, Name: "Navalha"}, nil
}

func (f *fakeBarbershops) GetWeeklyHours(context.Context, int64) (domain.WeeklyHours, error) {
	return f.hours, nil
}

func (f *fakeBarbershops) GetServices(_ context.Context, _ int64, ids []int64) ([]*domain.Service, error) {
	out := make([]*domain.Service, 0, len(ids))
	for _, id := range ids {
		if s, ok := f.services[id]; ok && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeBarbershops) BarberBelongsTo(_ context.Context, barberID, barbershopID int64) (bool, error) {
	return f.barbers[barberID] == barbershopID, nil
}

type fakeBookings struct {
	bookings []*domain.Booking
}

func (f *fakeBookings) ListActiveByBarberAndRange(_ context.Context, barberID int64, from, to time.Time) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if *b.BarberID == barberID && b.StartAt.Before(to) && b.EndAt.After(from) && b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

type readOnlyTx struct{}

func (readOnlyTx) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func local(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := zone.ParseLocalDateTime(s)
	require.NoError(t, err)
	return v
}

func newUseCase(t *testing.T, bookings ...*domain.Booking) *UseCase {
	t.Helper()

	var hours domain.WeeklyHours
	for d := time.Sunday; d <= time.Saturday; d++ {
		hours[d] = domain.DayHours{OpenMinute: 9 * 60, CloseMinute: 11 * 60}
	}
	hours[time.Sunday] = domain.DayHours{Closed: true}

	shops := &fakeBarbershops{
		hours: hours,
		services: map[int64]*domain.Service{
			3: {ID: 3, DurationMinutes: 30, Active: true},
			4: {ID: 4, DurationMinutes: 30, Active: true},
			5: {ID: 5, DurationMinutes: 30, Active: false},
		},
		barbers: map[int64]int64{7: 1},
	}

	uc := NewUseCase(shops, &fakeBookings{bookings: bookings}, readOnlyTx{}, zone,
		Settings{StepMinutes: 30, Buffer: 5 * time.Minute, MaxAdvanceDays: 30}, nopLogger{})
	uc.timeProvider = fixedTime{now: local(t, "2025-06-09T18:00")}
	return uc
}

func booked(t *testing.T, start, end string) *domain.Booking {
	barber := int64(7)
	return &domain.Booking{BarberID: &barber, StartAt: local(t, start), EndAt: local(t, end)}
}

func startTimes(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime)
	}
	return out
}

func TestExecute_ReturnsWallClockSlots(t *testing.T) {
	uc := newUseCase(t, booked(t, "2025-06-10T09:30", "2025-06-10T10:00"))

	resp, err := uc.Execute(context.Background(), &Request{BarbershopID: 1, BarberID: 7, Date: "2025-06-10", ServiceIDs: []int64{3}})
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, startTimes(resp.Slots))
	assert.Equal(t, "2025-06-10T10:00", resp.Slots[1].StartAt)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.False(t, resp.WaitlistOpen)
}

func TestExecute_SumsServiceDurations(t *testing.T) {
	uc := newUseCase(t)

	resp, err := uc.Execute(context.Background(), &Request{BarbershopID: 1, BarberID: 7, Date: "2025-06-10", ServiceIDs: []int64{3, 4, 3}})
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 4}, resp.ServiceIDs)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, startTimes(resp.Slots))
}

func TestExecute_FullDayOpensWaitlist(t *testing.T) {
	uc := newUseCase(t, booked(t, "2025-06-10T09:00", "2025-06-10T11:00"))

	resp, err := uc.Execute(context.Background(), &Request{BarbershopID: 1, BarberID: 7, Date: "2025-06-10", ServiceIDs: []int64{3}})
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
	assert.True(t, resp.WaitlistOpen)
}

func TestExecute_ClosedDay(t *testing.T) {
	uc := newUseCase(t)

	resp, err := uc.Execute(context.Background(), &Request{BarbershopID: 1, BarberID: 7, Date: "2025-06-15", ServiceIDs: []int64{3}})
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
	assert.False(t, resp.WaitlistOpen)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"no services", Request{BarbershopID: 1, BarberID: 7, Date: "2025-06-10"}, ErrInvalidInput},
		{"bad date", Request{BarbershopID: 1, BarberID: 7, Date: "2025-6-10", ServiceIDs: []int64{3}}, ErrInvalidDate},
		{"past date", Request{BarbershopID: 1, BarberID: 7, Date: "2025-06-01", ServiceIDs: []int64{3}}, ErrInvalidDate},
		{"too far", Request{BarbershopID: 1, BarberID: 7, Date: "2025-08-01", ServiceIDs: []int64{3}}, ErrDateTooFarInFuture},
		{"unknown barbershop", Request{BarbershopID: 2, BarberID: 7, Date: "2025-06-10", ServiceIDs: []int64{3}}, ErrBarbershopNotFound},
		{"foreign barber", Request{BarbershopID: 1, BarberID: 8, Date: "2025-06-10", ServiceIDs: []int64{3}}, ErrBarberNotFound},
		{"inactive service", Request{BarbershopID: 1, BarberID: 7, Date: "2025-06-10", ServiceIDs: []int64{5}}, ErrServiceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newUseCase(t)
			req := tt.req
			_, err := uc.Execute(context.Background(), &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
