package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	notificationRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/notification"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type jobKey struct {
	bookingID int64
	jobType   domain.NotificationJobType
}

type fakeJobRepo struct {
	contexts map[int64]*domain.NotificationContext
	jobs     map[jobKey]*domain.NotificationJob
	err      error
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		contexts: map[int64]*domain.NotificationContext{},
		jobs:     map[jobKey]*domain.NotificationJob{},
	}
}

func (f *fakeJobRepo) InsertSkipDuplicates(_ context.Context, bookingID, barbershopID int64, jobs []domain.PlannedJob, _ time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	created := 0
	for _, j := range jobs {
		key := jobKey{bookingID, j.Type}
		if _, ok := f.jobs[key]; ok {
			continue
		}
		f.jobs[key] = &domain.NotificationJob{
			BookingID:    bookingID,
			BarbershopID: barbershopID,
			Type:         j.Type,
			Status:       domain.JobStatusPending,
			ScheduledAt:  j.ScheduledAt,
		}
		created++
	}
	return created, nil
}

func (f *fakeJobRepo) CancelPendingByBooking(_ context.Context, bookingID int64, reason string, now time.Time) (int64, error) {
	var n int64
	for key, job := range f.jobs {
		if key.bookingID == bookingID && job.Status == domain.JobStatusPending {
			job.Status = domain.JobStatusCanceled
			job.CancelReason = &reason
			job.CanceledAt = &now
			n++
		}
	}
	return n, nil
}

func (f *fakeJobRepo) CancelFuturePendingByBarbershop(_ context.Context, barbershopID int64, reason string, now time.Time) (int64, error) {
	var n int64
	for _, job := range f.jobs {
		if job.BarbershopID == barbershopID && job.Status == domain.JobStatusPending && job.ScheduledAt.After(now) {
			job.Status = domain.JobStatusCanceled
			job.CancelReason = &reason
			n++
		}
	}
	return n, nil
}

func (f *fakeJobRepo) GetNotificationContext(_ context.Context, bookingID int64) (*domain.NotificationContext, error) {
	nc, ok := f.contexts[bookingID]
	if !ok {
		return nil, notificationRepo.ErrContextNotFound
	}
	return nc, nil
}

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func proMessaging() domain.MessagingSettings {
	return domain.MessagingSettings{
		Plan:               domain.PlanPro,
		Enabled:            true,
		ConfirmEnabled:     true,
		Reminder24hEnabled: true,
		Reminder1hEnabled:  true,
	}
}

func paidContext(id int64, startAt time.Time) *domain.NotificationContext {
	return &domain.NotificationContext{
		Booking: &domain.Booking{
			ID:            id,
			BarbershopID:  7,
			StartAt:       startAt,
			EndAt:         startAt.Add(30 * time.Minute),
			PaymentMethod: domain.PaymentMethodInPerson,
			PaymentStatus: domain.PaymentStatusPaid,
		},
		CustomerPhone: "+5511999998888",
		Messaging:     proMessaging(),
	}
}

func newTestService(repo *fakeJobRepo) *Service {
	svc := NewService(repo, "55", nopLogger{})
	svc.timeProvider = fixedTime{now: now}
	return svc
}

func TestScheduleBookingNotificationJobs(t *testing.T) {
	t.Run("schedules confirm and both reminders", func(t *testing.T) {
		repo := newFakeJobRepo()
		repo.contexts[1] = paidContext(1, now.Add(48*time.Hour))

		created, err := newTestService(repo).ScheduleBookingNotificationJobs(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 3, created)
		assert.Equal(t, now, repo.jobs[jobKey{1, domain.JobTypeBookingConfirm}].ScheduledAt)
		assert.Equal(t, now.Add(24*time.Hour), repo.jobs[jobKey{1, domain.JobTypeReminder24h}].ScheduledAt)
		assert.Equal(t, now.Add(47*time.Hour), repo.jobs[jobKey{1, domain.JobTypeReminder1h}].ScheduledAt)
	})

	t.Run("second call creates nothing", func(t *testing.T) {
		repo := newFakeJobRepo()
		repo.contexts[1] = paidContext(1, now.Add(48*time.Hour))
		svc := newTestService(repo)

		_, err := svc.ScheduleBookingNotificationJobs(context.Background(), 1)
		require.NoError(t, err)
		created, err := svc.ScheduleBookingNotificationJobs(context.Background(), 1)
		require.NoError(t, err)
		assert.Zero(t, created)
		assert.Len(t, repo.jobs, 3)
	})

	t.Run("past reminders are skipped", func(t *testing.T) {
		repo := newFakeJobRepo()
		repo.contexts[1] = paidContext(1, now.Add(2*time.Hour))

		created, err := newTestService(repo).ScheduleBookingNotificationJobs(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 2, created)
		assert.NotContains(t, repo.jobs, jobKey{1, domain.JobTypeReminder24h})
	})

	t.Run("basic plan gets nothing", func(t *testing.T) {
		repo := newFakeJobRepo()
		nc := paidContext(1, now.Add(48*time.Hour))
		nc.Messaging.Plan = domain.PlanBasic
		repo.contexts[1] = nc

		created, err := newTestService(repo).ScheduleBookingNotificationJobs(context.Background(), 1)
		require.NoError(t, err)
		assert.Zero(t, created)
	})

	t.Run("cancelled booking gets nothing", func(t *testing.T) {
		repo := newFakeJobRepo()
		nc := paidContext(1, now.Add(48*time.Hour))
		nc.Booking.CancelledAt = &now
		repo.contexts[1] = nc

		created, err := newTestService(repo).ScheduleBookingNotificationJobs(context.Background(), 1)
		require.NoError(t, err)
		assert.Zero(t, created)
	})

	t.Run("pending payment gets nothing", func(t *testing.T) {
		repo := newFakeJobRepo()
		nc := paidContext(1, now.Add(48*time.Hour))
		nc.Booking.PaymentStatus = domain.PaymentStatusPending
		repo.contexts[1] = nc

		created, err := newTestService(repo).ScheduleBookingNotificationJobs(context.Background(), 1)
		require.NoError(t, err)
		assert.Zero(t, created)
	})

	t.Run("invalid phone gets nothing", func(t *testing.T) {
		repo := newFakeJobRepo()
		nc := paidContext(1, now.Add(48*time.Hour))
		nc.CustomerPhone = "123"
		repo.contexts[1] = nc

		created, err := newTestService(repo).ScheduleBookingNotificationJobs(context.Background(), 1)
		require.NoError(t, err)
		assert.Zero(t, created)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := newTestService(newFakeJobRepo()).ScheduleBookingNotificationJobs(context.Background(), 99)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("insert failure", func(t *testing.T) {
		repo := newFakeJobRepo()
		repo.contexts[1] = paidContext(1, now.Add(48*time.Hour))
		repo.err = errors.New("db down")

		_, err := newTestService(repo).ScheduleBookingNotificationJobs(context.Background(), 1)
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestCancelPendingBookingNotificationJobs(t *testing.T) {
	repo := newFakeJobRepo()
	repo.contexts[1] = paidContext(1, now.Add(48*time.Hour))
	svc := newTestService(repo)

	_, err := svc.ScheduleBookingNotificationJobs(context.Background(), 1)
	require.NoError(t, err)
	repo.jobs[jobKey{1, domain.JobTypeBookingConfirm}].Status = domain.JobStatusSent

	canceled, err := svc.CancelPendingBookingNotificationJobs(context.Background(), 1, domain.CancelReasonBookingCanceled)
	require.NoError(t, err)
	assert.Equal(t, int64(2), canceled)
	assert.Equal(t, domain.JobStatusSent, repo.jobs[jobKey{1, domain.JobTypeBookingConfirm}].Status)

	_, err = svc.CancelPendingBookingNotificationJobs(context.Background(), 1, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancelFutureTenantNotificationJobs(t *testing.T) {
	repo := newFakeJobRepo()
	repo.jobs[jobKey{1, domain.JobTypeReminder1h}] = &domain.NotificationJob{
		BookingID: 1, BarbershopID: 7, Status: domain.JobStatusPending, ScheduledAt: now.Add(time.Hour),
	}
	repo.jobs[jobKey{2, domain.JobTypeBookingConfirm}] = &domain.NotificationJob{
		BookingID: 2, BarbershopID: 7, Status: domain.JobStatusPending, ScheduledAt: now.Add(-time.Minute),
	}
	repo.jobs[jobKey{3, domain.JobTypeReminder1h}] = &domain.NotificationJob{
		BookingID: 3, BarbershopID: 8, Status: domain.JobStatusPending, ScheduledAt: now.Add(time.Hour),
	}

	canceled, err := newTestService(repo).CancelFutureTenantNotificationJobs(context.Background(), 7, domain.CancelReasonPlanDowngrade)
	require.NoError(t, err)
	assert.Equal(t, int64(1), canceled)
	assert.Equal(t, domain.JobStatusPending, repo.jobs[jobKey{2, domain.JobTypeBookingConfirm}].Status)
	assert.Equal(t, domain.JobStatusPending, repo.jobs[jobKey{3, domain.JobTypeReminder1h}].Status)
}
