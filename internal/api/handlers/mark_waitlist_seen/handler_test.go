package mark_waitlist_seen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/service/waitlist"
)

type fakeService struct {
	entryID int64
	userID  int64
	err     error
}

func (f *fakeService) MarkSeen(_ context.Context, entryID, userID int64) error {
	f.entryID, f.userID = entryID, userID
	return f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newRouter(svc WaitlistService) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Auth)
	router.HandleFunc("/api/v1/waitlist/{entryId}/seen", NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodPatch)
	return router
}

func patch(router http.Handler, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, path, nil)
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_MarkedSeen(t *testing.T) {
	svc := &fakeService{}
	rec := patch(newRouter(svc), "/api/v1/waitlist/31/seen", "100")

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(31), svc.entryID)
	assert.Equal(t, int64(100), svc.userID)
	assert.Empty(t, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		userID string
		err    error
		code   int
	}{
		{"no user", "/api/v1/waitlist/31/seen", "", nil, http.StatusUnauthorized},
		{"bad id", "/api/v1/waitlist/abc/seen", "100", nil, http.StatusBadRequest},
		{"negative id", "/api/v1/waitlist/-4/seen", "100", nil, http.StatusBadRequest},
		{"not found", "/api/v1/waitlist/31/seen", "100", waitlist.ErrEntryNotFound, http.StatusNotFound},
		{"internal", "/api/v1/waitlist/31/seen", "100", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := patch(newRouter(&fakeService{err: tt.err}), tt.path, tt.userID)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
