package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	barbershopRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/barbershop"
	waitlistRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/waitlist"
	"github.com/m04kA/SMC-BarberBooking/internal/service/waitlist/models"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

var zone = slottime.MustZone("America/Sao_Paulo")

// fakeEntries повторяет частичный уникальный индекс по активным записям
type fakeEntries struct {
	entries []*domain.WaitlistEntry
}

func (f *fakeEntries) Create(_ context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	for _, e := range f.entries {
		if e.IsActive() && e.UserID == entry.UserID && e.BarbershopID == entry.BarbershopID &&
			e.BarberID == entry.BarberID && e.ServiceID == entry.ServiceID && e.DateDay.Equal(entry.DateDay) {
			return nil, waitlistRepo.ErrAlreadyOnWaitlist
		}
	}
	cp := *entry
	cp.ID = int64(len(f.entries) + 1)
	cp.Status = domain.WaitlistStatusActive
	f.entries = append(f.entries, &cp)
	return &cp, nil
}

func (f *fakeEntries) ListByUser(_ context.Context, userID int64) ([]*domain.WaitlistEntry, error) {
	var out []*domain.WaitlistEntry
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].UserID == userID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeEntries) MarkSeen(_ context.Context, id int64, userID int64, now time.Time) error {
	for _, e := range f.entries {
		if e.ID == id && e.UserID == userID && e.Status == domain.WaitlistStatusFulfilled {
			if e.FulfilledSeenAt == nil {
				e.FulfilledSeenAt = &now
			}
			return nil
		}
	}
	return waitlistRepo.ErrEntryNotFound
}

type fakeBarbershops struct{}

func (fakeBarbershops) GetByID(_ context.Context, id int64) (*domain.Barbershop, error) {
	if id != 1 {
		return nil, barbershopRepo.ErrBarbershopNotFound
	}
	return &domain.Barbershop{ID: 1}, nil
}

func (fakeBarbershops) GetService(_ context.Context, id int64) (*domain.Service, error) {
	switch id {
	case 3:
		return &domain.Service{ID: 3, BarbershopID: 1, DurationMinutes: 30, Active: true}, nil
	case 4:
		return &domain.Service{ID: 4, BarbershopID: 2, DurationMinutes: 30, Active: true}, nil
	case 5:
		return &domain.Service{ID: 5, BarbershopID: 1, DurationMinutes: 30, Active: false}, nil
	}
	return nil, barbershopRepo.ErrServiceNotFound
}

func (fakeBarbershops) BarberBelongsTo(_ context.Context, barberID, barbershopID int64) (bool, error) {
	return barberID == 7 && barbershopID == 1, nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newService(t *testing.T) (*Service, *fakeEntries) {
	t.Helper()

	now, err := zone.ParseLocalDateTime("2025-06-09T22:30")
	require.NoError(t, err)

	repo := &fakeEntries{}
	svc := NewService(repo, fakeBarbershops{}, zone, 30, nopLogger{})
	svc.timeProvider = fixedTime{now: now}
	return svc, repo
}

func joinRequest(date string) *models.JoinRequest {
	return &models.JoinRequest{UserID: 100, BarbershopID: 1, BarberID: 7, ServiceID: 3, Date: date}
}

func TestJoin(t *testing.T) {
	svc, repo := newService(t)

	resp, err := svc.Join(context.Background(), joinRequest("2025-06-10"))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", resp.Date)
	assert.Equal(t, string(domain.WaitlistStatusActive), resp.Status)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), repo.entries[0].DateDay)

	_, err = svc.Join(context.Background(), joinRequest("2025-06-10"))
	assert.ErrorIs(t, err, ErrAlreadyOnWaitlist)

	// после выполнения можно встать в очередь снова
	repo.entries[0].Status = domain.WaitlistStatusFulfilled
	_, err = svc.Join(context.Background(), joinRequest("2025-06-10"))
	assert.NoError(t, err)
}

func TestJoin_TodayInBusinessZone(t *testing.T) {
	svc, _ := newService(t)

	// 22:30 в Сан-Паулу это уже 10 июня по UTC, но местный день ещё 9 июня
	_, err := svc.Join(context.Background(), joinRequest("2025-06-09"))
	assert.NoError(t, err)
}

func TestJoin_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.JoinRequest)
		want   error
	}{
		{"past date", func(r *models.JoinRequest) { r.Date = "2025-06-08" }, ErrInvalidDate},
		{"too far", func(r *models.JoinRequest) { r.Date = "2025-08-01" }, ErrInvalidDate},
		{"bad date", func(r *models.JoinRequest) { r.Date = "10/06/2025" }, ErrInvalidInput},
		{"zero barber", func(r *models.JoinRequest) { r.BarberID = 0 }, ErrInvalidInput},
		{"unknown barbershop", func(r *models.JoinRequest) { r.BarbershopID = 2 }, ErrBarbershopNotFound},
		{"foreign barber", func(r *models.JoinRequest) { r.BarberID = 8 }, ErrBarberNotFound},
		{"unknown service", func(r *models.JoinRequest) { r.ServiceID = 99 }, ErrServiceNotFound},
		{"service of other barbershop", func(r *models.JoinRequest) { r.ServiceID = 4 }, ErrServiceNotFound},
		{"inactive service", func(r *models.JoinRequest) { r.ServiceID = 5 }, ErrServiceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t)
			req := joinRequest("2025-06-10")
			tt.mutate(req)

			_, err := svc.Join(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, repo.entries)
		})
	}
}

func TestListAndMarkSeen(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.Join(context.Background(), joinRequest("2025-06-10"))
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), joinRequest("2025-06-11"))
	require.NoError(t, err)

	bookingID := int64(77)
	repo.entries[0].Status = domain.WaitlistStatusFulfilled
	repo.entries[0].FulfilledBookingID = &bookingID

	list, err := svc.List(context.Background(), 100, 100)
	require.NoError(t, err)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, "2025-06-11", list.Entries[0].Date)
	assert.Equal(t, 1, list.UnseenFulfilled)

	_, err = svc.List(context.Background(), 101, 100)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// активную запись подтверждать нечего
	assert.ErrorIs(t, svc.MarkSeen(context.Background(), 2, 100), ErrEntryNotFound)
	assert.ErrorIs(t, svc.MarkSeen(context.Background(), 1, 101), ErrEntryNotFound)

	require.NoError(t, svc.MarkSeen(context.Background(), 1, 100))
	first := *repo.entries[0].FulfilledSeenAt
	require.NoError(t, svc.MarkSeen(context.Background(), 1, 100))
	assert.Equal(t, first, *repo.entries[0].FulfilledSeenAt)

	list, err = svc.List(context.Background(), 100, 100)
	require.NoError(t, err)
	assert.Zero(t, list.UnseenFulfilled)
}
