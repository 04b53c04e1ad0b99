package stripe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const testWebhookSecret = "whsec_test_secret"

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		Currency:      "BRL",
		SuccessURL:    "https://example.com/ok",
		CancelURL:     "https://example.com/cancel",
		Timeout:       5 * time.Second,
		BaseURL:       baseURL,
	}, nopLogger{})
}

func TestRetrieveSession_PaidWithCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		assert.Contains(t, r.URL.RawQuery, "payment_intent.latest_charge")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "cs_test_1",
			"object": "checkout.session",
			"status": "complete",
			"payment_status": "paid",
			"client_reference_id": "42",
			"metadata": {"booking_id": "42"},
			"payment_intent": {
				"id": "pi_1",
				"object": "payment_intent",
				"latest_charge": {"id": "ch_1", "object": "charge"}
			}
		}`)
	}))
	defer server.Close()

	session, err := newTestClient(server.URL).RetrieveSession(context.Background(), "cs_test_1")
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, domain.SessionStatusComplete, session.Status)
	assert.True(t, session.IsPaid())
	assert.Equal(t, "pi_1", session.PaymentIntentID)
	assert.Equal(t, "ch_1", session.ChargeID)
	require.NotNil(t, session.BookingID)
	assert.Equal(t, int64(42), *session.BookingID)
}

func TestRetrieveSession_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"type": "invalid_request_error", "message": "No such checkout.session"}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RetrieveSession(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRetrieveSession_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"type": "invalid_request_error", "message": "bad"}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RetrieveSession(context.Background(), "cs_bad")
	assert.ErrorIs(t, err, ErrProvider)
}

func TestParseWebhook(t *testing.T) {
	client := newTestClient("")

	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.expired",
		"data": {"object": {"id": "cs_test_9", "object": "checkout.session"}}
	}`)

	t.Run("valid signature", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload: payload,
			Secret:  testWebhookSecret,
		})

		event, err := client.ParseWebhook(payload, signed.Header)
		require.NoError(t, err)
		assert.Equal(t, "evt_1", event.ID)
		assert.Equal(t, domain.ProviderEventExpired, event.Kind)
		assert.Equal(t, "cs_test_9", event.SessionID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload: payload,
			Secret:  "whsec_other",
		})

		_, err := client.ParseWebhook(payload, signed.Header)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := client.ParseWebhook(payload, "")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("unsupported event", func(t *testing.T) {
		other := []byte(`{"id": "evt_2", "object": "event", "type": "charge.refunded", "data": {"object": {"id": "ch_1"}}}`)
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload: other,
			Secret:  testWebhookSecret,
		})

		event, err := client.ParseWebhook(other, signed.Header)
		require.NoError(t, err)
		assert.False(t, event.IsSupported())
		assert.Empty(t, event.SessionID)
	})
}
