package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-BarberBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

type fakeUseCase struct {
	req  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.req = req
	return f.resp, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const validBody = `{"barbershopId":1,"barberId":7,"serviceIds":[3,4],"startAt":"2025-06-10T10:00","paymentMethod":"STRIPE"}`

func serve(t *testing.T, uc *fakeUseCase, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	h := NewHandler(uc, slottime.MustZone("America/Sao_Paulo"), nopLogger{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	start := time.Date(2025, 6, 10, 13, 0, 0, 0, time.UTC)
	barberID := int64(7)
	uc := &fakeUseCase{resp: &createBooking.Response{
		Booking: &domain.Booking{
			ID:                   42,
			UserID:               100,
			BarbershopID:         1,
			BarberID:             &barberID,
			ServiceID:            3,
			ServiceIDs:           []int64{3, 4},
			StartAt:              start,
			EndAt:                start.Add(50 * time.Minute),
			TotalDurationMinutes: 50,
			PaymentMethod:        domain.PaymentMethodStripe,
			PaymentStatus:        domain.PaymentStatusPending,
		},
		CheckoutURL: "https://checkout.stripe.com/c/pay/cs_test_1",
	}}

	rec := serve(t, uc, validBody, 100)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, uc.req)
	assert.Equal(t, int64(100), uc.req.UserID)
	assert.Equal(t, []int64{3, 4}, uc.req.ServiceIDs)
	assert.Equal(t, domain.PaymentMethodStripe, uc.req.PaymentMethod)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(42), body["id"])
	assert.Equal(t, "10:00", body["startTime"])
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", body["checkoutUrl"])
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{createBooking.ErrSlotTaken, http.StatusConflict},
		{createBooking.ErrPaymentProvider, http.StatusBadGateway},
		{createBooking.ErrBarbershopNotFound, http.StatusNotFound},
		{createBooking.ErrBarberNotFound, http.StatusNotFound},
		{createBooking.ErrServiceNotFound, http.StatusNotFound},
		{createBooking.ErrInvalidTimeSlot, http.StatusBadRequest},
		{createBooking.ErrTooLateToBook, http.StatusBadRequest},
		{createBooking.ErrDateTooFarInFuture, http.StatusBadRequest},
		{createBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			uc := &fakeUseCase{err: fmt.Errorf("%w: details", tt.err)}
			rec := serve(t, uc, validBody, 100)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestHandle_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"unknown field", `{"barbershopId":1,"barberId":7,"serviceIds":[3],"startAt":"2025-06-10T10:00","paymentMethod":"STRIPE","x":1}`},
		{"no services", `{"barbershopId":1,"barberId":7,"serviceIds":[],"startAt":"2025-06-10T10:00","paymentMethod":"STRIPE"}`},
		{"bad method", `{"barbershopId":1,"barberId":7,"serviceIds":[3],"startAt":"2025-06-10T10:00","paymentMethod":"PIX"}`},
		{"bad start", `{"barbershopId":1,"barberId":7,"serviceIds":[3],"startAt":"10/06/2025 10:00","paymentMethod":"STRIPE"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			rec := serve(t, uc, tt.body, 100)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, uc.req)
		})
	}
}

func TestHandle_Unauthorized(t *testing.T) {
	uc := &fakeUseCase{}
	rec := serve(t, uc, validBody, 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, uc.req)
}
