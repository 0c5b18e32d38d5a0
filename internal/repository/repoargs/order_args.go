package repoargs

import "github.com/fsdevblog/lavka-pay/internal/domain"

// MarkPaid данные перевода заказа в paid вместе с замороженной разбивкой комиссий.
// Применяется условно: только к заказу в статусе pending.
type MarkPaid struct {
	OrderID            int64
	PaymentIntentID    string
	PlatformFeeCents   int64
	ProcessingFeeCents int64
	AdFeeCents         int64
	FeesTotalCents     int64
	SellerPayoutCents  int64
	AdsEnabledAtSale   bool
}

// CreateRefundRequest заводит заявку на возврат на оплаченном заказе.
type CreateRefundRequest struct {
	OrderID     int64
	Type        domain.RefundTypeType
	AmountCents int64
	Reason      string
}

// TransitionRefund условный переход статуса заявки: выполняется только если
// текущий статус равен From. Ноль затронутых строк — конфликт одноразового
// перехода, а не успех.
type TransitionRefund struct {
	OrderID int64
	From    domain.RefundStatusType
	To      domain.RefundStatusType
	// RejectReason заполняется только при переходе в REJECTED.
	RejectReason string
	// MarkRefunded дополнительно переводит paymentStatus заказа в refunded
	// и проставляет refunded_at.
	MarkRefunded bool
}
