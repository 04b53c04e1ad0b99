package dispatch_notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	dispatchNotifications "github.com/m04kA/SMC-BarberBooking/internal/usecase/dispatch_notifications"
)

const cronSecret = "s3cret"

type fakeUseCase struct {
	calls int
	err   error
}

func (f *fakeUseCase) Run(context.Context) (*dispatchNotifications.Summary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &dispatchNotifications.Summary{RunID: "run-1", Scanned: 3, Sent: 2, Retried: 1}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newRouter(secret string, uc DispatchUseCase) *mux.Router {
	router := mux.NewRouter()
	internal := router.PathPrefix("/api/v1/internal").Subrouter()
	internal.Use(middleware.CronAuth(secret))
	internal.HandleFunc("/notifications/dispatch", NewHandler(uc, nopLogger{}).Handle).Methods(http.MethodPost)
	return router
}

func post(router http.Handler, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/notifications/dispatch", nil)
	if secret != "" {
		req.Header.Set(middleware.HeaderCronSecret, secret)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_RunsDispatcher(t *testing.T) {
	uc := &fakeUseCase{}
	rec := post(newRouter(cronSecret, uc), cronSecret)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, uc.calls)

	var summary dispatchNotifications.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 3, summary.Scanned)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Retried)
}

func TestHandle_CronSecret(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		given      string
	}{
		{"missing header", cronSecret, ""},
		{"wrong secret", cronSecret, "guess"},
		{"secret not configured", "", "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			rec := post(newRouter(tt.configured, uc), tt.given)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Zero(t, uc.calls)
		})
	}
}

func TestHandle_RunFailure(t *testing.T) {
	rec := post(newRouter(cronSecret, &fakeUseCase{err: errors.New("db down")}), cronSecret)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
