package update_messaging_settings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/service/config"
	"github.com/m04kA/SMC-BarberBooking/internal/service/config/models"
)

type fakeService struct {
	barbershopID int64
	req          *models.UpdateMessagingRequest
	err          error
}

func (f *fakeService) UpdateMessaging(_ context.Context, barbershopID int64, req *models.UpdateMessagingRequest) (*models.UpdateMessagingResponse, error) {
	f.barbershopID, f.req = barbershopID, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.UpdateMessagingResponse{
		Messaging:    models.MessagingDTO{Plan: "BASIC", Enabled: true},
		CanceledJobs: 4,
	}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newRouter(svc ConfigService) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Auth)
	router.HandleFunc("/api/v1/barbershops/{barbershopId}/config/messaging", NewHandler(svc, nopLogger{}).Handle).
		Methods(http.MethodPut)
	return router
}

func put(router http.Handler, path, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const path = "/api/v1/barbershops/1/config/messaging"

func TestHandle_Downgrade(t *testing.T) {
	svc := &fakeService{}
	rec := put(newRouter(svc), path, `{"plan":"BASIC","reminder1hEnabled":false}`, "100")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), svc.barbershopID)
	require.NotNil(t, svc.req)
	assert.Equal(t, int64(100), svc.req.UserID)
	require.NotNil(t, svc.req.Plan)
	assert.Equal(t, "BASIC", *svc.req.Plan)
	require.NotNil(t, svc.req.Reminder1hEnabled)
	assert.False(t, *svc.req.Reminder1hEnabled)
	assert.Nil(t, svc.req.Enabled)
	assert.Contains(t, rec.Body.String(), `"canceledJobs":4`)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		userID string
		err    error
		code   int
	}{
		{"no user", path, `{"enabled":true}`, "", nil, http.StatusUnauthorized},
		{"bad id", "/api/v1/barbershops/x/config/messaging", `{"enabled":true}`, "100", nil, http.StatusBadRequest},
		{"unknown plan", path, `{"plan":"GOLD"}`, "100", nil, http.StatusBadRequest},
		{"malformed body", path, `{"enabled":`, "100", nil, http.StatusBadRequest},
		{"not found", path, `{"enabled":true}`, "100", config.ErrBarbershopNotFound, http.StatusNotFound},
		{"not owner", path, `{"enabled":true}`, "100", config.ErrAccessDenied, http.StatusForbidden},
		{"invalid input", path, `{"enabled":true}`, "100", config.ErrInvalidInput, http.StatusBadRequest},
		{"internal", path, `{"enabled":true}`, "100", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := put(newRouter(&fakeService{err: tt.err}), tt.path, tt.body, tt.userID)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
