package cancel_booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/service/bookings"
	"github.com/m04kA/SMC-BarberBooking/internal/service/bookings/models"
)

type fakeService struct {
	bookingID int64
	req       *models.CancelBookingRequest
	err       error
}

func (f *fakeService) Cancel(_ context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	f.bookingID, f.req = bookingID, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: bookingID}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newRouter(svc BookingService) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Auth)
	router.HandleFunc("/api/v1/bookings/{bookingId}/cancel", NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodPatch)
	return router
}

func patch(router http.Handler, path, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Cancelled(t *testing.T) {
	svc := &fakeService{}
	rec := patch(newRouter(svc), "/api/v1/bookings/15/cancel", `{"cancellationReason":"viagem"}`, "100")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(15), svc.bookingID)
	assert.Equal(t, int64(100), svc.req.UserID)
	assert.Equal(t, "viagem", svc.req.CancellationReason)
}

func TestHandle_EmptyBody(t *testing.T) {
	svc := &fakeService{}
	rec := patch(newRouter(svc), "/api/v1/bookings/15/cancel", "", "100")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.req.CancellationReason)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		userID string
		err    error
		code   int
	}{
		{"no user", "/api/v1/bookings/15/cancel", "", nil, http.StatusUnauthorized},
		{"bad id", "/api/v1/bookings/abc/cancel", "100", nil, http.StatusBadRequest},
		{"stranger", "/api/v1/bookings/15/cancel", "555", bookings.ErrAccessDenied, http.StatusForbidden},
		{"not found", "/api/v1/bookings/15/cancel", "100", bookings.ErrBookingNotFound, http.StatusNotFound},
		{"started", "/api/v1/bookings/15/cancel", "100", bookings.ErrCannotCancel, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := patch(newRouter(&fakeService{err: tt.err}), tt.path, "", tt.userID)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
