package join_waitlist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/service/waitlist"
	"github.com/m04kA/SMC-BarberBooking/internal/service/waitlist/models"
)

type fakeService struct {
	req *models.JoinRequest
	err error
}

func (f *fakeService) Join(_ context.Context, req *models.JoinRequest) (*models.EntryResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.EntryResponse{ID: 31, UserID: req.UserID, Date: req.Date, Status: "ACTIVE"}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newRouter(svc WaitlistService) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Auth)
	router.HandleFunc("/api/v1/waitlist", NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodPost)
	return router
}

func post(router http.Handler, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/waitlist", strings.NewReader(body))
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"barbershopId":1,"barberId":7,"serviceId":3,"date":"2025-06-10"}`

func TestHandle_Joined(t *testing.T) {
	svc := &fakeService{}
	rec := post(newRouter(svc), validBody, "100")

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.req)
	assert.Equal(t, int64(100), svc.req.UserID)
	assert.Equal(t, int64(7), svc.req.BarberID)
	assert.Equal(t, "2025-06-10", svc.req.Date)
	assert.Contains(t, rec.Body.String(), `"id":31`)
}

func TestHandle_UserIDFromHeaderOnly(t *testing.T) {
	svc := &fakeService{}
	rec := post(newRouter(svc), `{"barbershopId":1,"barberId":7,"serviceId":3,"date":"2025-06-10","userId":5}`, "100")

	// userId в теле не принимается
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.req)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		userID string
		err    error
		code   int
	}{
		{"no user", validBody, "", nil, http.StatusUnauthorized},
		{"missing barber", `{"barbershopId":1,"serviceId":3,"date":"2025-06-10"}`, "100", nil, http.StatusBadRequest},
		{"bad date format", `{"barbershopId":1,"barberId":7,"serviceId":3,"date":"10.06.2025"}`, "100", nil, http.StatusBadRequest},
		{"barbershop not found", validBody, "100", waitlist.ErrBarbershopNotFound, http.StatusNotFound},
		{"barber not found", validBody, "100", fmt.Errorf("join: %w", waitlist.ErrBarberNotFound), http.StatusNotFound},
		{"service not found", validBody, "100", waitlist.ErrServiceNotFound, http.StatusNotFound},
		{"date out of window", validBody, "100", waitlist.ErrInvalidDate, http.StatusBadRequest},
		{"invalid input", validBody, "100", waitlist.ErrInvalidInput, http.StatusBadRequest},
		{"duplicate", validBody, "100", waitlist.ErrAlreadyOnWaitlist, http.StatusConflict},
		{"internal", validBody, "100", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newRouter(&fakeService{err: tt.err}), tt.body, tt.userID)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
