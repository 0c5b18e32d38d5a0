// Package notify клиент внешнего сервиса уведомлений. Вызывается строго
// fire-and-forget: расчет заказа не зависит от доставки письма.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultClientTimeout = 5 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создает клиент. Пустой baseURL выключает отправку: все вызовы становятся
// no-op. Удобно для локальной разработки и тестов.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultClientTimeout,
		},
	}
}

type orderConfirmationPayload struct {
	OrderID         int64  `json:"order_id"`
	BuyerID         *int64 `json:"buyer_id,omitempty"`
	OrderTotalCents int64  `json:"order_total_cents"`
	Currency        string `json:"currency"`
}

// SendOrderConfirmation отправляет подтверждение оплаченного заказа.
func (c *Client) SendOrderConfirmation(
	ctx context.Context,
	orderID int64,
	buyerID *int64,
	orderTotalCents int64,
	currency string,
) error {
	if c.baseURL == "" {
		return nil
	}

	payload, marshalErr := json.Marshal(orderConfirmationPayload{
		OrderID:         orderID,
		BuyerID:         buyerID,
		OrderTotalCents: orderTotalCents,
		Currency:        currency,
	})
	if marshalErr != nil {
		return errors.Wrap(marshalErr, "marshaling order confirmation")
	}

	req, reqErr := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/notifications/order-confirmation",
		bytes.NewReader(payload),
	)
	if reqErr != nil {
		return errors.Wrap(reqErr, "building notification request")
	}
	req.Header.Set("Content-Type", "application/json")
	// корреляция с логами сервиса уведомлений
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return errors.Wrap(doErr, "sending order confirmation")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("notification service returned status %d", resp.StatusCode)
	}
	return nil
}
