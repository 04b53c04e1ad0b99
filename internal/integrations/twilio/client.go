package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	twiliogo "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент провайдера сообщений (SMS / WhatsApp)
type Client struct {
	rest     *twiliogo.RestClient
	from     string
	whatsApp bool
	log      Logger
}

// NewClient создает новый экземпляр клиента рассылок
func NewClient(cfg Config, log Logger) *Client {
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}
	if cfg.Transport != nil {
		httpClient.Transport = cfg.Transport
	}

	base := &twilioclient.Client{
		Credentials: twilioclient.NewCredentials(cfg.AccountSID, cfg.AuthToken),
		HTTPClient:  httpClient,
	}
	base.SetAccountSid(cfg.AccountSID)

	return &Client{
		rest:     twiliogo.NewRestClientWithParams(twiliogo.ClientParams{Client: base}),
		from:     cfg.From,
		whatsApp: cfg.WhatsApp,
		log:      log,
	}
}

// Send отправляет сообщение и возвращает его SID у провайдера
// Если задан ContentSID, используется шаблон с переменными, Body остаётся запасным текстом
func (c *Client) Send(ctx context.Context, msg domain.OutboundMessage) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(c.address(msg.To))
	params.SetFrom(c.address(c.from))

	if msg.ContentSID != "" {
		params.SetContentSid(msg.ContentSID)
		if len(msg.ContentVariables) > 0 {
			vars, err := json.Marshal(msg.ContentVariables)
			if err != nil {
				return "", fmt.Errorf("%w: encode content variables: %v", ErrSend, err)
			}
			params.SetContentVariables(string(vars))
		}
	} else {
		params.SetBody(msg.Body)
	}

	type sendResult struct {
		sid string
		err error
	}

	// клиент провайдера не принимает context, поэтому ждём ответа или отмены
	done := make(chan sendResult, 1)
	go func() {
		resp, err := c.rest.Api.CreateMessage(params)
		if err != nil {
			done <- sendResult{err: err}
			return
		}
		sid := ""
		if resp != nil && resp.Sid != nil {
			sid = *resp.Sid
		}
		done <- sendResult{sid: sid}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", classify(res.err)
		}
		c.log.Info("Twilio: message sent to %s, sid=%s", maskPhone(msg.To), res.sid)
		return res.sid, nil
	}
}

func (c *Client) address(phone string) string {
	if c.whatsApp {
		return whatsAppPrefix + phone
	}
	return phone
}

func classify(err error) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		if _, ok := invalidDestinationCodes[restErr.Code]; ok {
			return fmt.Errorf("%w: code=%d: %s", ErrInvalidDestination, restErr.Code, restErr.Message)
		}
		return fmt.Errorf("%w: code=%d status=%d: %s", ErrSend, restErr.Code, restErr.Status, restErr.Message)
	}
	return fmt.Errorf("%w: %v", ErrSend, err)
}

// maskPhone оставляет последние 4 цифры номера для логов
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}
