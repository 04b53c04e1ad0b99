package reconcile_session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	reconcilePayment "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
)

type fakeUseCase struct {
	sessionID string
	hint      reconcilePayment.Hint
	err       error
}

func (f *fakeUseCase) ReconcileBySessionID(_ context.Context, sessionID string, hint reconcilePayment.Hint) (*reconcilePayment.Result, error) {
	f.sessionID, f.hint = sessionID, hint
	if f.err != nil {
		return nil, f.err
	}
	return &reconcilePayment.Result{
		BookingID:     15,
		SessionID:     sessionID,
		Outcome:       reconcilePayment.OutcomeMarkedPaid,
		PaymentStatus: domain.PaymentStatusPaid,
		JobsScheduled: 2,
	}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newRouter(uc ReconcileUseCase) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Auth)
	router.HandleFunc("/api/v1/payments/sessions/{sessionId}/reconcile", NewHandler(uc, nopLogger{}).Handle).
		Methods(http.MethodPost)
	return router
}

func post(router http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/sessions/cs_test_1/reconcile", nil)
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_ReconcilesOwnSession(t *testing.T) {
	uc := &fakeUseCase{}
	rec := post(newRouter(uc), "100")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cs_test_1", uc.sessionID)
	assert.Equal(t, reconcilePayment.SourceManual, uc.hint.Source)
	assert.False(t, uc.hint.ExpectPaid)
	require.NotNil(t, uc.hint.UserID)
	assert.Equal(t, int64(100), *uc.hint.UserID)

	var resp ReconcileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(15), resp.BookingID)
	assert.Equal(t, string(reconcilePayment.OutcomeMarkedPaid), resp.Outcome)
	assert.Equal(t, string(domain.PaymentStatusPaid), resp.PaymentStatus)
	assert.Equal(t, 2, resp.JobsScheduled)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		err    error
		code   int
	}{
		{"no user", "", nil, http.StatusUnauthorized},
		{"session not found", "100", reconcilePayment.ErrSessionNotFound, http.StatusNotFound},
		{"foreign booking", "100", fmt.Errorf("owner: %w", reconcilePayment.ErrBookingNotFound), http.StatusNotFound},
		{"invalid input", "100", reconcilePayment.ErrInvalidInput, http.StatusBadRequest},
		{"conflict", "100", reconcilePayment.ErrConflict, http.StatusConflict},
		{"provider down", "100", fmt.Errorf("retrieve: %w", reconcilePayment.ErrProvider), http.StatusBadGateway},
		{"internal", "100", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newRouter(&fakeUseCase{err: tt.err}), tt.userID)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
