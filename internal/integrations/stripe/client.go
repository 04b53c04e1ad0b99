package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	stripeapi "github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// Client клиент платёжного провайдера: checkout-сессии и проверка webhook
type Client struct {
	api           *stripeclient.API
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
	sessionTTL    time.Duration
	now           func() time.Time
	log           Logger
}

// NewClient создает новый экземпляр клиента платёжного провайдера
func NewClient(cfg Config, log Logger) *Client {
	backendConfig := &stripeapi.BackendConfig{
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		LeveledLogger:     leveledLogger{log: log},
		MaxNetworkRetries: stripeapi.Int64(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		backendConfig.URL = stripeapi.String(cfg.BaseURL)
	}

	api := &stripeclient.API{}
	api.Init(cfg.SecretKey, stripeapi.NewBackendsWithConfig(backendConfig))

	ttl := cfg.SessionTTL
	if ttl < minSessionTTL {
		ttl = minSessionTTL
	}

	return &Client{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		currency:      strings.ToLower(cfg.Currency),
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		sessionTTL:    ttl,
		now:           time.Now,
		log:           log,
	}
}

// RetrieveSession получает авторитетное состояние checkout-сессии
// Charge ID берётся из развёрнутого payment_intent.latest_charge
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*domain.ProviderSession, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand(expandLatestCharge)

	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: retrieve session %s: %v", ErrProvider, sessionID, err)
	}

	return toProviderSession(session), nil
}

// CreateCheckoutSession создает checkout-сессию на полную стоимость бронирования
// Повтор с тем же бронированием возвращает ту же сессию (idempotency key)
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*domain.ProviderSession, error) {
	bookingID := strconv.FormatInt(req.BookingID, 10)

	params := &stripeapi.CheckoutSessionParams{
		Mode:              stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:        stripeapi.String(c.successURL),
		CancelURL:         stripeapi.String(c.cancelURL),
		ClientReferenceID: stripeapi.String(bookingID),
		ExpiresAt:         stripeapi.Int64(c.now().Add(c.sessionTTL).Unix()),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripeapi.String(c.currency),
					UnitAmount: stripeapi.Int64(req.AmountInCents),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(req.Description),
					},
				},
				Quantity: stripeapi.Int64(1),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripeapi.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.IdempotencyKey = stripeapi.String("booking-checkout-" + bookingID)
	params.AddMetadata(metadataBookingID, bookingID)
	params.AddMetadata(metadataUserID, strconv.FormatInt(req.UserID, 10))

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create session for booking %d: %v", ErrProvider, req.BookingID, err)
	}

	c.log.Info("Stripe: created checkout session %s for booking %d", session.ID, req.BookingID)
	return toProviderSession(session), nil
}

// ParseWebhook проверяет подпись и извлекает событие checkout-сессии
// Для событий других объектов SessionID остаётся пустым
func (c *Client) ParseWebhook(payload []byte, signature string) (*domain.ProviderEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	result := &domain.ProviderEvent{
		ID:   event.ID,
		Kind: domain.ProviderEventKind(event.Type),
	}

	if !result.IsSupported() {
		return result, nil
	}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: event %s has no data object", ErrInvalidPayload, event.ID)
	}

	var session stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%w: decode checkout session: %v", ErrInvalidPayload, err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("%w: event %s has no session id", ErrInvalidPayload, event.ID)
	}

	result.SessionID = session.ID
	return result, nil
}

func toProviderSession(s *stripeapi.CheckoutSession) *domain.ProviderSession {
	result := &domain.ProviderSession{
		ID:            s.ID,
		Status:        domain.ProviderSessionStatus(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		URL:           s.URL,
	}

	if s.ExpiresAt > 0 {
		result.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	}

	if s.PaymentIntent != nil {
		result.PaymentIntentID = s.PaymentIntent.ID
		if s.PaymentIntent.LatestCharge != nil {
			result.ChargeID = s.PaymentIntent.LatestCharge.ID
		}
	}

	result.BookingID = bookingIDFromSession(s)
	return result
}

// bookingIDFromSession ID бронирования из metadata, затем из client_reference_id
func bookingIDFromSession(s *stripeapi.CheckoutSession) *int64 {
	candidates := []string{s.Metadata[metadataBookingID], s.ClientReferenceID}
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && id > 0 {
			return &id
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var stripeErr *stripeapi.Error
	return errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
