package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultClientTimeout = 10 * time.Second

// Client HTTP клиент API платежного провайдера. Движок дергает его в двух
// случаях: денежный возврат по заявке и списание листингового сбора с
// подключенного аккаунта магазина.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultClientTimeout,
		},
	}
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateRefund запрашивает денежный возврат по payment intent. Возвращает id
// возврата провайдера. Ключ идемпотентности задает вызывающая сторона,
// детерминированно от заявки: ретрай после сбоя уходит с тем же ключом и не
// создает второй возврат.
func (c *Client) CreateRefund(
	ctx context.Context,
	paymentIntentID string,
	amountCents int64,
	idempotencyKey string,
) (string, error) {
	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	form.Set("amount", strconv.FormatInt(amountCents, 10))

	var resp refundResponse
	if err := c.postForm(ctx, "/v1/refunds", idempotencyKey, form, &resp); err != nil {
		return "", errors.Wrapf(err, "creating refund for intent `%s`", paymentIntentID)
	}
	return resp.ID, nil
}

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CollectListingFee списывает листинговый сбор с подключенного аккаунта
// магазина. Возвращает id списания провайдера.
func (c *Client) CollectListingFee(
	ctx context.Context,
	providerAccountID string,
	amountCents int64,
	description string,
	idempotencyKey string,
) (string, error) {
	form := url.Values{}
	form.Set("account", providerAccountID)
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("description", description)

	var resp chargeResponse
	if err := c.postForm(ctx, "/v1/account_charges", idempotencyKey, form, &resp); err != nil {
		return "", errors.Wrapf(err, "collecting listing fee from account `%s`", providerAccountID)
	}
	return resp.ID, nil
}

func (c *Client) postForm(ctx context.Context, path, idempotencyKey string, form url.Values, out any) error {
	req, reqErr := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		strings.NewReader(form.Encode()),
	)
	if reqErr != nil {
		return errors.Wrap(reqErr, "building request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return errors.Wrap(doErr, "sending request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return errors.Wrap(readErr, "reading response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.New(fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "decoding response body")
	}
	return nil
}
