package cancel_future_notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

const cronSecret = "s3cret"

type fakeScheduler struct {
	calls        int
	barbershopID int64
	reason       string
	err          error
}

func (f *fakeScheduler) CancelFutureTenantNotificationJobs(_ context.Context, barbershopID int64, reason string) (int64, error) {
	f.calls++
	f.barbershopID, f.reason = barbershopID, reason
	if f.err != nil {
		return 0, f.err
	}
	return 5, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newRouter(scheduler NotificationScheduler) *mux.Router {
	router := mux.NewRouter()
	internal := router.PathPrefix("/api/v1/internal").Subrouter()
	internal.Use(middleware.CronAuth(cronSecret))
	internal.HandleFunc("/barbershops/{barbershopId}/notifications/cancel-future", NewHandler(scheduler, nopLogger{}).Handle).
		Methods(http.MethodPost)
	return router
}

func post(router http.Handler, path, body, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(middleware.HeaderCronSecret, secret)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const path = "/api/v1/internal/barbershops/12/notifications/cancel-future"

func TestHandle_DefaultReasonIsPlanDowngrade(t *testing.T) {
	scheduler := &fakeScheduler{}
	rec := post(newRouter(scheduler), path, "", cronSecret)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(12), scheduler.barbershopID)
	assert.Equal(t, domain.CancelReasonPlanDowngrade, scheduler.reason)

	var resp CancelResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(5), resp.CanceledJobs)
	assert.Equal(t, domain.CancelReasonPlanDowngrade, resp.Reason)
}

func TestHandle_CustomReason(t *testing.T) {
	scheduler := &fakeScheduler{}
	rec := post(newRouter(scheduler), path, `{"reason":"barbershop_closed"}`, cronSecret)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "barbershop_closed", scheduler.reason)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		secret string
		err    error
		code   int
	}{
		{"wrong secret", path, "", "guess", nil, http.StatusUnauthorized},
		{"bad id", "/api/v1/internal/barbershops/x/notifications/cancel-future", "", cronSecret, nil, http.StatusBadRequest},
		{"unknown field", path, `{"why":"x"}`, cronSecret, nil, http.StatusBadRequest},
		{"reason too long", path, `{"reason":"` + strings.Repeat("r", 65) + `"}`, cronSecret, nil, http.StatusBadRequest},
		{"store failed", path, "", cronSecret, errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := &fakeScheduler{err: tt.err}
			rec := post(newRouter(scheduler), tt.path, tt.body, tt.secret)

			assert.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusInternalServerError {
				assert.Zero(t, scheduler.calls)
			}
		})
	}
}
