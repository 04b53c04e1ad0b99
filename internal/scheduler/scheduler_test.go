package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dispatchNotifications "github.com/m04kA/SMC-BarberBooking/internal/usecase/dispatch_notifications"
	reconcilePayment "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
)

type fakeDispatcher struct{ runs int }

func (f *fakeDispatcher) Run(context.Context) (*dispatchNotifications.Summary, error) {
	f.runs++
	return &dispatchNotifications.Summary{}, nil
}

type fakeReconciler struct {
	called []int64
	failOn int64
}

func (f *fakeReconciler) ReconcileForTenant(_ context.Context, id int64) (*reconcilePayment.SweepSummary, error) {
	f.called = append(f.called, id)
	if id == f.failOn {
		return nil, errors.New("stripe down")
	}
	return &reconcilePayment.SweepSummary{RunID: "r", Scanned: 1, Paid: 1}, nil
}

type fakeShops struct {
	ids []int64
	err error
}

func (f fakeShops) ListActiveIDs(context.Context) ([]int64, error) {
	return f.ids, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestReconcileAll_ContinuesAfterFailure(t *testing.T) {
	rec := &fakeReconciler{failOn: 2}
	s, err := New(Config{}, time.UTC, &fakeDispatcher{}, rec, fakeShops{ids: []int64{1, 2, 3}}, nopLogger{})
	require.NoError(t, err)

	done := s.ReconcileAll(context.Background())

	assert.Equal(t, 2, done)
	assert.Equal(t, []int64{1, 2, 3}, rec.called)
}

func TestReconcileAll_ListFailure(t *testing.T) {
	rec := &fakeReconciler{}
	s, err := New(Config{}, time.UTC, &fakeDispatcher{}, rec, fakeShops{err: errors.New("db down")}, nopLogger{})
	require.NoError(t, err)

	assert.Zero(t, s.ReconcileAll(context.Background()))
	assert.Empty(t, rec.called)
}

func TestReconcileAll_StopsOnCancelledContext(t *testing.T) {
	rec := &fakeReconciler{}
	s, err := New(Config{}, time.UTC, &fakeDispatcher{}, rec, fakeShops{ids: []int64{1, 2}}, nopLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Zero(t, s.ReconcileAll(ctx))
	assert.Empty(t, rec.called)
}

func TestNew_RegistersJobs(t *testing.T) {
	s, err := New(Config{DispatchSpec: "@every 1m", ReconcileSpec: "*/15 * * * *"},
		time.UTC, &fakeDispatcher{}, &fakeReconciler{}, fakeShops{}, nopLogger{})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	_, err = New(Config{DispatchSpec: "every minute"}, time.UTC, &fakeDispatcher{}, &fakeReconciler{}, fakeShops{}, nopLogger{})
	assert.Error(t, err)
}

func TestDispatch_RunsDispatcher(t *testing.T) {
	d := &fakeDispatcher{}
	s, err := New(Config{}, time.UTC, d, &fakeReconciler{}, fakeShops{}, nopLogger{})
	require.NoError(t, err)

	s.dispatch()
	assert.Equal(t, 1, d.runs)
}
