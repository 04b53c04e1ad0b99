package stripe_webhook

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reconcilePayment "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
)

type fakeUseCase struct {
	payload   []byte
	signature string
	err       error
}

func (f *fakeUseCase) HandleWebhook(_ context.Context, payload []byte, signature string) (*reconcilePayment.Result, error) {
	f.payload, f.signature = payload, signature
	if f.err != nil {
		return nil, f.err
	}
	return &reconcilePayment.Result{SessionID: "cs_test_1", BookingID: 9, Outcome: reconcilePayment.OutcomeMarkedPaid}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func post(uc *fakeUseCase) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set(HeaderSignature, "t=1,v1=abc")
	rec := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(rec, req)
	return rec
}

func TestHandle_PassesRawBodyAndSignature(t *testing.T) {
	uc := &fakeUseCase{}
	rec := post(uc)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"id":"evt_1"}`, string(uc.payload))
	assert.Equal(t, "t=1,v1=abc", uc.signature)
	assert.JSONEq(t, `{"received":true,"outcome":"marked_paid"}`, rec.Body.String())
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"bad signature", reconcilePayment.ErrInvalidWebhook, http.StatusBadRequest},
		{"unknown booking", reconcilePayment.ErrConflict, http.StatusConflict},
		{"provider down", reconcilePayment.ErrProvider, http.StatusServiceUnavailable},
		{"db down", reconcilePayment.ErrInternal, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(&fakeUseCase{err: fmt.Errorf("%w: details", tt.err)})
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
