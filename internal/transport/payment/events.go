// Package payment граница с платежным провайдером: разбор вебхук-событий в
// типизированные варианты, проверка подписи и HTTP клиент для возвратов и
// списаний.
package payment

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Типы событий провайдера, которые движок умеет применять. Остальные типы
// принимаются и пропускаются — каталог событий провайдера растет, и неизвестный
// тип не повод отвечать ошибкой.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventInvoicePaymentSucceeded  = "invoice.payment_succeeded"
	EventChargeRefunded           = "charge.refunded"
	EventDisputeCreated           = "charge.dispute.created"
)

// Event типизированный вариант вебхук-события. Разбор свободных metadata
// происходит ровно один раз — здесь, на границе; сервисный слой диспетчеризует
// по конкретному типу.
type Event interface {
	ProviderEventID() string
}

type CheckoutMode string

const (
	ModeOrder        CheckoutMode = "payment"
	ModeSubscription CheckoutMode = "subscription"
)

// CheckoutCompleted завершенная чекаут-сессия. Mode разделяет непересекающиеся
// пути: оплата заказа и листинговая подписка.
type CheckoutCompleted struct {
	EventID            string
	SessionID          string
	PaymentIntentID    string
	Mode               CheckoutMode
	OrderID            int64
	ListingID          int64
	SubscriptionID     string
	SubscriptionStatus string
}

type SubscriptionUpdated struct {
	EventID        string
	SubscriptionID string
	Status         string
}

type InvoicePaid struct {
	EventID        string
	SubscriptionID string
}

type ChargeRefunded struct {
	EventID         string
	PaymentIntentID string
}

type DisputeCreated struct {
	EventID         string
	DisputeID       string
	PaymentIntentID string
	Reason          string
}

// UnknownEvent событие типа, которого движок не знает. Не ошибка.
type UnknownEvent struct {
	EventID string
	Type    string
}

func (e CheckoutCompleted) ProviderEventID() string   { return e.EventID }
func (e SubscriptionUpdated) ProviderEventID() string { return e.EventID }
func (e InvoicePaid) ProviderEventID() string         { return e.EventID }
func (e ChargeRefunded) ProviderEventID() string      { return e.EventID }
func (e DisputeCreated) ProviderEventID() string      { return e.EventID }
func (e UnknownEvent) ProviderEventID() string        { return e.EventID }

type envelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type sessionObject struct {
	ID            string            `json:"id"`
	Mode          string            `json:"mode"`
	PaymentIntent string            `json:"payment_intent"`
	Subscription  string            `json:"subscription"`
	Metadata      map[string]string `json:"metadata"`
}

type subscriptionObject struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type invoiceObject struct {
	Subscription string `json:"subscription"`
}

type chargeObject struct {
	PaymentIntent string `json:"payment_intent"`
}

type disputeObject struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	Reason        string `json:"reason"`
}

// Decode разбирает сырой payload вебхука в типизированное событие. Ошибка
// означает синтаксически некорректный payload (HTTP 400), а не незнакомый тип.
func Decode(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(err, "decoding webhook envelope")
	}

	switch env.Type {
	case EventCheckoutSessionCompleted:
		return decodeCheckoutCompleted(env)
	case EventSubscriptionUpdated:
		var obj subscriptionObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, errors.Wrap(err, "decoding subscription object")
		}
		return SubscriptionUpdated{EventID: env.ID, SubscriptionID: obj.ID, Status: obj.Status}, nil
	case EventInvoicePaymentSucceeded:
		var obj invoiceObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, errors.Wrap(err, "decoding invoice object")
		}
		return InvoicePaid{EventID: env.ID, SubscriptionID: obj.Subscription}, nil
	case EventChargeRefunded:
		var obj chargeObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, errors.Wrap(err, "decoding charge object")
		}
		return ChargeRefunded{EventID: env.ID, PaymentIntentID: obj.PaymentIntent}, nil
	case EventDisputeCreated:
		var obj disputeObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, errors.Wrap(err, "decoding dispute object")
		}
		return DisputeCreated{
			EventID:         env.ID,
			DisputeID:       obj.ID,
			PaymentIntentID: obj.PaymentIntent,
			Reason:          obj.Reason,
		}, nil
	default:
		return UnknownEvent{EventID: env.ID, Type: env.Type}, nil
	}
}

func decodeCheckoutCompleted(env envelope) (Event, error) {
	var obj sessionObject
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return nil, errors.Wrap(err, "decoding checkout session object")
	}

	event := CheckoutCompleted{
		EventID:         env.ID,
		SessionID:       obj.ID,
		PaymentIntentID: obj.PaymentIntent,
		SubscriptionID:  obj.Subscription,
	}

	// Режим сессии определяется метаданными, а не одним лишь полем mode:
	// заказные сессии несут order_id, листинговые — listing_id.
	if listingID, ok := parseMetaID(obj.Metadata, "listing_id"); ok && obj.Mode != string(ModeOrder) {
		event.Mode = ModeSubscription
		event.ListingID = listingID
		event.SubscriptionStatus = "active"
		return event, nil
	}

	event.Mode = ModeOrder
	if orderID, ok := parseMetaID(obj.Metadata, "order_id"); ok {
		event.OrderID = orderID
	}
	return event, nil
}

func parseMetaID(metadata map[string]string, key string) (int64, bool) {
	raw, ok := metadata[key]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
