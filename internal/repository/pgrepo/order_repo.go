package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

const orderColumns = `id, created_at, updated_at, buyer_id, listing_id, seller_id, shop_id, currency,
	items_subtotal_cents, shipping_cents, gift_wrap_cents, tax_cents, order_subtotal_cents, order_total_cents,
	platform_fee_cents, processing_fee_cents, ad_fee_cents, fees_total_cents, seller_payout_cents,
	payment_status, ads_enabled_at_sale, session_id, payment_intent_id,
	refund_type, refund_status, refund_amount_cents, refund_reason, refunded_at`

type OrderRepository struct {
	conn uow.DBTX
}

func NewOrderRepository(conn uow.DBTX) *OrderRepository {
	return &OrderRepository{conn: conn}
}

func (o *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by id %d", id)
	}
	return order, nil
}

// FindByIDForUpdate берет блокировку на строку заказа до конца транзакции.
// Вызывается только внутри uow.Do.
func (o *OrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "locking order by id %d", id)
	}
	return order, nil
}

// FindBySessionIDForUpdate ищет заказ по id чекаут-сессии провайдера с блокировкой
// строки. Блокировка сериализует конкурентные доставки одного и того же вебхука:
// вторая доставка дождется коммита первой и увидит статус paid.
func (o *OrderRepository) FindBySessionIDForUpdate(ctx context.Context, sessionID string) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE session_id = $1 FOR UPDATE`, sessionID)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by session id `%s`", sessionID)
	}
	return order, nil
}

// MarkPaid переводит заказ pending -> paid и одним апдейтом замораживает разбивку
// комиссий. Условие по payment_status гарантирует, что повторное применение
// вернет ErrRecordNotFound, а не перезапишет комиссии.
func (o *OrderRepository) MarkPaid(ctx context.Context, args repoargs.MarkPaid) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx, `
		UPDATE orders
		SET payment_status = 'paid',
			payment_intent_id = $2,
			platform_fee_cents = $3,
			processing_fee_cents = $4,
			ad_fee_cents = $5,
			fees_total_cents = $6,
			seller_payout_cents = $7,
			ads_enabled_at_sale = $8,
			updated_at = now()
		WHERE id = $1 AND payment_status = 'pending'
		RETURNING `+orderColumns,
		args.OrderID,
		args.PaymentIntentID,
		args.PlatformFeeCents,
		args.ProcessingFeeCents,
		args.AdFeeCents,
		args.FeesTotalCents,
		args.SellerPayoutCents,
		args.AdsEnabledAtSale,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "marking order %d as paid", args.OrderID)
	}
	return order, nil
}

// MarkRefundedByPaymentIntent массовый перевод paid -> refunded по payment intent.
// Один intent в общем случае может покрывать несколько локальных заказов, поэтому
// возвращается количество затронутых строк, а не единственный заказ. Заявка на
// возврат в статусе PROCESSING этим же апдейтом закрывается в COMPLETED.
func (o *OrderRepository) MarkRefundedByPaymentIntent(ctx context.Context, paymentIntentID string) (int64, error) {
	tag, err := o.conn.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'refunded',
			refund_status = CASE WHEN refund_status = 'PROCESSING' THEN 'COMPLETED' ELSE refund_status END,
			refunded_at = now(),
			updated_at = now()
		WHERE payment_intent_id = $1 AND payment_status = 'paid'`,
		paymentIntentID,
	)
	if err != nil {
		return 0, convertErr(err, "refunding orders by payment intent `%s`", paymentIntentID)
	}
	return tag.RowsAffected(), nil
}

// CountPaidByBuyer считает оплаченные заказы юзера (включая только что
// рассчитанный, если вызывается в той же транзакции после MarkPaid).
func (o *OrderRepository) CountPaidByBuyer(ctx context.Context, buyerID int64) (int64, error) {
	var count int64
	err := o.conn.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE buyer_id = $1 AND payment_status = 'paid'`,
		buyerID,
	).Scan(&count)
	if err != nil {
		return 0, convertErr(err, "counting paid orders for buyer %d", buyerID)
	}
	return count, nil
}

// CreateRefundRequest заводит заявку на возврат. Разрешено только на оплаченном
// заказе без открытой заявки; отклоненная заявка не блокирует новую.
func (o *OrderRepository) CreateRefundRequest(
	ctx context.Context,
	args repoargs.CreateRefundRequest,
) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx, `
		UPDATE orders
		SET refund_type = $2,
			refund_status = 'REQUESTED',
			refund_amount_cents = $3,
			refund_reason = $4,
			updated_at = now()
		WHERE id = $1
			AND payment_status = 'paid'
			AND refund_status IN ('', 'REJECTED')
		RETURNING `+orderColumns,
		args.OrderID, args.Type, args.AmountCents, args.Reason,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating refund request for order %d", args.OrderID)
	}
	return order, nil
}

// TransitionRefund условный переход заявки From -> To. Ноль затронутых строк
// возвращается как ErrRecordNotFound: вызывающая сторона трактует это как
// конфликт одноразового перехода.
func (o *OrderRepository) TransitionRefund(
	ctx context.Context,
	args repoargs.TransitionRefund,
) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET refund_status = $3,
			refund_reason = CASE WHEN $4 <> '' THEN $4 ELSE refund_reason END,
			updated_at = now()`
	if args.MarkRefunded {
		query += `,
			payment_status = 'refunded',
			refunded_at = now()`
	}
	query += `
		WHERE id = $1 AND refund_status = $2
		RETURNING ` + orderColumns

	row := o.conn.QueryRow(ctx, query, args.OrderID, args.From, args.To, args.RejectReason)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "transitioning refund of order %d from %s to %s", args.OrderID, args.From, args.To)
	}
	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.BuyerID,
		&order.ListingID,
		&order.SellerID,
		&order.ShopID,
		&order.Currency,
		&order.ItemsSubtotalCents,
		&order.ShippingCents,
		&order.GiftWrapCents,
		&order.TaxCents,
		&order.OrderSubtotalCents,
		&order.OrderTotalCents,
		&order.PlatformFeeCents,
		&order.ProcessingFeeCents,
		&order.AdFeeCents,
		&order.FeesTotalCents,
		&order.SellerPayoutCents,
		&order.PaymentStatus,
		&order.AdsEnabledAtSale,
		&order.SessionID,
		&order.PaymentIntentID,
		&order.RefundType,
		&order.RefundStatus,
		&order.RefundAmountCents,
		&order.RefundReason,
		&order.RefundedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
