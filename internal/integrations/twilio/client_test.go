package twilio

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(whatsApp bool, rt roundTripFunc) *Client {
	return NewClient(Config{
		AccountSID: "AC123",
		AuthToken:  "token",
		From:       "+15550001111",
		WhatsApp:   whatsApp,
		Timeout:    time.Second,
		Transport:  rt,
	}, nopLogger{})
}

func TestSend_TemplateOverWhatsApp(t *testing.T) {
	var form url.Values
	client := newTestClient(true, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/Accounts/AC123/Messages.json"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		form, err = url.ParseQuery(string(body))
		require.NoError(t, err)
		return jsonResponse(http.StatusCreated, `{"sid": "SM1", "status": "queued"}`), nil
	})

	sid, err := client.Send(context.Background(), domain.OutboundMessage{
		To:               "+5511999998888",
		ContentSID:       "HX123",
		ContentVariables: map[string]string{"1": "Ana"},
		Body:             "fallback",
	})
	require.NoError(t, err)

	assert.Equal(t, "SM1", sid)
	assert.Equal(t, "whatsapp:+5511999998888", form.Get("To"))
	assert.Equal(t, "whatsapp:+15550001111", form.Get("From"))
	assert.Equal(t, "HX123", form.Get("ContentSid"))
	assert.JSONEq(t, `{"1": "Ana"}`, form.Get("ContentVariables"))
	assert.Empty(t, form.Get("Body"))
}

func TestSend_PlainTextSMS(t *testing.T) {
	var form url.Values
	client := newTestClient(false, func(r *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		return jsonResponse(http.StatusCreated, `{"sid": "SM2"}`), nil
	})

	_, err := client.Send(context.Background(), domain.OutboundMessage{To: "+5511999998888", Body: "Olá"})
	require.NoError(t, err)

	assert.Equal(t, "+5511999998888", form.Get("To"))
	assert.Equal(t, "Olá", form.Get("Body"))
}

func TestSend_InvalidDestination(t *testing.T) {
	client := newTestClient(false, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"code": 21211, "message": "Invalid 'To' Phone Number", "status": 400}`), nil
	})

	_, err := client.Send(context.Background(), domain.OutboundMessage{To: "+100", Body: "x"})
	assert.ErrorIs(t, err, ErrInvalidDestination)
}

func TestSend_ProviderError(t *testing.T) {
	client := newTestClient(false, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"code": 20500, "message": "Internal Server Error", "status": 500}`), nil
	})

	_, err := client.Send(context.Background(), domain.OutboundMessage{To: "+5511999998888", Body: "x"})
	assert.ErrorIs(t, err, ErrSend)
	assert.NotErrorIs(t, err, ErrInvalidDestination)
}

func TestSend_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	client := newTestClient(false, func(r *http.Request) (*http.Response, error) {
		<-release
		return jsonResponse(http.StatusCreated, `{"sid": "SM3"}`), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Send(ctx, domain.OutboundMessage{To: "+5511999998888", Body: "x"})
	assert.ErrorIs(t, err, ErrTimeout)
}
