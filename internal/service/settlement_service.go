package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/fees"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/internal/transport/payment"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

// SettlementService превращает асинхронные события провайдера в авторитетное
// локальное состояние заказов, комиссий и кредитов. Контракт доставки —
// at-least-once, поэтому каждый обработчик обязан быть идемпотентным: первая
// проверка статуса делает повтор всего обработчика no-op'ом.
type SettlementService struct {
	uow         uow.UOW
	creditSvs   *CreditService
	notifier    Notifier
	l           *logrus.Entry
	orderRepo   OrderRepository
	listingRepo ListingRepository
	disputeRepo DisputeRepository
}

func NewSettlementService(
	u uow.UOW,
	creditSvs *CreditService,
	notifier Notifier,
	l *logrus.Logger,
) (*SettlementService, error) {
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	listingRepo, listingRepoErr := uow.GetRepositoryAs[ListingRepository](
		u, uow.RepositoryName(repoargs.ListingRepoName),
	)
	if listingRepoErr != nil {
		return nil, listingRepoErr
	}
	disputeRepo, disputeRepoErr := uow.GetRepositoryAs[DisputeRepository](
		u, uow.RepositoryName(repoargs.DisputeRepoName),
	)
	if disputeRepoErr != nil {
		return nil, disputeRepoErr
	}

	return &SettlementService{
		uow:       u,
		creditSvs: creditSvs,
		notifier:  notifier,
		l: l.WithFields(logrus.Fields{
			"component": "settlement",
		}),
		orderRepo:   orderRepo,
		listingRepo: listingRepo,
		disputeRepo: disputeRepo,
	}, nil
}

// HandleEvent применяет одно типизированное событие провайдера. Незнакомые типы
// принимаются и пропускаются. Ошибка означает сбой на нашей стороне: провайдер
// получит 5xx и доставит событие повторно.
func (s *SettlementService) HandleEvent(ctx context.Context, event payment.Event) error {
	switch e := event.(type) {
	case payment.CheckoutCompleted:
		if e.Mode == payment.ModeSubscription {
			return s.handleListingCheckout(ctx, e)
		}
		return s.handleOrderCheckout(ctx, e)
	case payment.SubscriptionUpdated:
		return s.handleSubscriptionStatus(ctx, e.EventID, e.SubscriptionID, e.Status)
	case payment.InvoicePaid:
		// оплаченный инвойс листинговой подписки просто держит её активной
		return s.handleSubscriptionStatus(ctx, e.EventID, e.SubscriptionID, "active")
	case payment.ChargeRefunded:
		return s.handleChargeRefunded(ctx, e)
	case payment.DisputeCreated:
		return s.handleDisputeCreated(ctx, e)
	case payment.UnknownEvent:
		s.l.WithFields(logrus.Fields{"eventID": e.EventID, "type": e.Type}).
			Debug("skipping unknown event type")
		return nil
	default:
		s.l.WithField("eventID", event.ProviderEventID()).Debug("skipping unhandled event variant")
		return nil
	}
}

// handleOrderCheckout расчет оплаченного заказа. Вся мутация — одна транзакция
// за блокировкой строки заказа: повторная доставка события увидит статус paid и
// выйдет, конкурентная — дождется коммита первой и тоже выйдет.
func (s *SettlementService) handleOrderCheckout(ctx context.Context, event payment.CheckoutCompleted) error {
	l := s.l.WithFields(logrus.Fields{"eventID": event.EventID, "sessionID": event.SessionID})

	if event.SessionID == "" {
		l.Warn("order checkout event without session id, skipping")
		return nil
	}

	var settledOrder *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}
		shopRepo, shopRepoErr := uow.GetAs[ShopRepository](tx, uow.RepositoryName(repoargs.ShopRepoName))
		if shopRepoErr != nil {
			return shopRepoErr //nolint:wrapcheck
		}
		feeRepo, feeRepoErr := uow.GetAs[FeeTransactionRepository](
			tx, uow.RepositoryName(repoargs.FeeTransactionRepoName),
		)
		if feeRepoErr != nil {
			return feeRepoErr //nolint:wrapcheck
		}

		order, findErr := orderRepo.FindBySessionIDForUpdate(c, event.SessionID)
		if findErr != nil {
			if errors.Is(findErr, domain.ErrRecordNotFound) {
				// аномалия, но не повод заставлять провайдера ретраить вечно
				l.Warn("order for session not found, acknowledging event")
				return nil
			}
			return findErr //nolint:wrapcheck
		}

		if order.PaymentStatus != domain.PaymentStatusPending {
			// уже применено — идемпотентный no-op
			return nil
		}

		shop, shopErr := shopRepo.FindByID(c, order.ShopID)
		if shopErr != nil {
			return shopErr //nolint:wrapcheck
		}

		breakdown := fees.Compute(fees.BreakdownArgs{
			ItemsSubtotalCents: order.ItemsSubtotalCents,
			ShippingCents:      order.ShippingCents,
			GiftWrapCents:      order.GiftWrapCents,
			TaxCents:           order.TaxCents,
			CountryCode:        shop.CountryCode,
			AdsEnabled:         shop.AdsEnabled,
		})
		if !breakdown.KnownCountry {
			l.WithField("countryCode", shop.CountryCode).
				Warn("unknown country code, default processing rule applied")
		}

		paidOrder, paidErr := orderRepo.MarkPaid(c, repoargs.MarkPaid{
			OrderID:            order.ID,
			PaymentIntentID:    event.PaymentIntentID,
			PlatformFeeCents:   breakdown.PlatformFeeCents,
			ProcessingFeeCents: breakdown.ProcessingFeeCents,
			AdFeeCents:         breakdown.AdFeeCents,
			FeesTotalCents:     breakdown.FeesTotalCents,
			SellerPayoutCents:  breakdown.SellerPayoutCents,
			AdsEnabledAtSale:   shop.AdsEnabled,
		})
		if paidErr != nil {
			return paidErr //nolint:wrapcheck
		}

		if feesErr := feeRepo.CreateOrderFees(c, orderFeeRows(paidOrder, breakdown)); feesErr != nil {
			return feesErr //nolint:wrapcheck
		}

		if paidOrder.BuyerID != nil {
			awarded, bonusErr := s.creditSvs.AwardWelcomeBonusIfEligible(c, tx, *paidOrder.BuyerID, time.Now())
			if bonusErr != nil {
				return bonusErr
			}
			if awarded {
				l.WithField("buyerID", *paidOrder.BuyerID).Info("welcome bonus awarded")
			}
		}

		settledOrder = paidOrder
		return nil
	})

	if txErr != nil {
		return fmt.Errorf("settling order checkout `%s`: %w", event.SessionID, txErr)
	}

	if settledOrder != nil {
		l.WithField("orderID", settledOrder.ID).Info("order settled")
		// уведомление строго fire-and-forget: расчет уже закоммичен
		if notifyErr := s.notifier.SendOrderConfirmation(
			ctx,
			settledOrder.ID,
			settledOrder.BuyerID,
			settledOrder.OrderTotalCents,
			settledOrder.Currency,
		); notifyErr != nil {
			l.WithError(notifyErr).Error("sending order confirmation")
		}
	}
	return nil
}

// orderFeeRows компоненты комиссии заказа для fee_transactions. Нулевые
// компоненты строк не создают.
func orderFeeRows(order *domain.Order, breakdown fees.Breakdown) []repoargs.OrderFeeCreate {
	var rows []repoargs.OrderFeeCreate
	if breakdown.PlatformFeeCents > 0 {
		rows = append(rows, repoargs.OrderFeeCreate{
			OrderID:     order.ID,
			ShopID:      order.ShopID,
			Type:        domain.FeeTypeTransaction,
			AmountCents: breakdown.PlatformFeeCents,
			Description: fmt.Sprintf("Transaction fee for order #%d", order.ID),
		})
	}
	if breakdown.ProcessingFeeCents > 0 {
		rows = append(rows, repoargs.OrderFeeCreate{
			OrderID:     order.ID,
			ShopID:      order.ShopID,
			Type:        domain.FeeTypePaymentProcessing,
			AmountCents: breakdown.ProcessingFeeCents,
			Description: fmt.Sprintf("Payment processing fee (%s) for order #%d", breakdown.RuleLabel, order.ID),
		})
	}
	if breakdown.AdFeeCents > 0 {
		rows = append(rows, repoargs.OrderFeeCreate{
			OrderID:     order.ID,
			ShopID:      order.ShopID,
			Type:        domain.FeeTypeAdvertising,
			AmountCents: breakdown.AdFeeCents,
			Description: fmt.Sprintf("Advertising fee for order #%d", order.ID),
		})
	}
	return rows
}

// handleListingCheckout активация лота после оплаты листинговой подписки.
// Путь полностью независим от заказов.
func (s *SettlementService) handleListingCheckout(ctx context.Context, event payment.CheckoutCompleted) error {
	l := s.l.WithFields(logrus.Fields{"eventID": event.EventID, "listingID": event.ListingID})

	if event.ListingID == 0 {
		l.Warn("subscription checkout without listing id, skipping")
		return nil
	}

	_, err := s.listingRepo.Activate(ctx, repoargs.ActivateListing{
		ListingID:          event.ListingID,
		SubscriptionID:     event.SubscriptionID,
		SubscriptionStatus: event.SubscriptionStatus,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			l.Warn("listing not found, acknowledging event")
			return nil
		}
		return fmt.Errorf("activating listing %d: %w", event.ListingID, err)
	}

	l.Info("listing activated")
	return nil
}

func (s *SettlementService) handleSubscriptionStatus(
	ctx context.Context,
	eventID, subscriptionID, status string,
) error {
	l := s.l.WithFields(logrus.Fields{"eventID": eventID, "subscriptionID": subscriptionID})

	if subscriptionID == "" {
		l.Debug("subscription event without subscription id, skipping")
		return nil
	}

	affected, err := s.listingRepo.UpdateSubscriptionStatus(ctx, subscriptionID, status)
	if err != nil {
		return fmt.Errorf("updating subscription `%s`: %w", subscriptionID, err)
	}
	if affected == 0 {
		l.Debug("no listings for subscription, skipping")
		return nil
	}

	l.WithFields(logrus.Fields{"status": status, "listings": affected}).Info("subscription status updated")
	return nil
}

// handleChargeRefunded массовый перевод заказов в refunded по payment intent.
// Намеренно не предполагает один-к-одному: intent может покрывать несколько
// локальных заказов.
func (s *SettlementService) handleChargeRefunded(ctx context.Context, event payment.ChargeRefunded) error {
	l := s.l.WithFields(logrus.Fields{"eventID": event.EventID, "paymentIntentID": event.PaymentIntentID})

	if event.PaymentIntentID == "" {
		l.Warn("charge refunded event without payment intent, skipping")
		return nil
	}

	affected, err := s.orderRepo.MarkRefundedByPaymentIntent(ctx, event.PaymentIntentID)
	if err != nil {
		return fmt.Errorf("refunding orders for intent `%s`: %w", event.PaymentIntentID, err)
	}
	if affected == 0 {
		// либо ретрай уже примененного события, либо интент нам неизвестен
		l.Warn("no paid orders for refunded charge")
		return nil
	}

	l.WithField("orders", affected).Info("orders refunded by provider event")
	return nil
}

// handleDisputeCreated фиксирует спор для ручного разбирательства. Статус заказа
// не трогается: спор решает человек.
func (s *SettlementService) handleDisputeCreated(ctx context.Context, event payment.DisputeCreated) error {
	l := s.l.WithFields(logrus.Fields{"eventID": event.EventID, "disputeID": event.DisputeID})

	_, err := s.disputeRepo.Create(ctx, repoargs.DisputeCreate{
		ProviderDisputeID: event.DisputeID,
		PaymentIntentID:   event.PaymentIntentID,
		Reason:            event.Reason,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			// повторная доставка того же спора
			return nil
		}
		return fmt.Errorf("recording dispute `%s`: %w", event.DisputeID, err)
	}

	l.Warn("payment dispute recorded, manual review required")
	return nil
}
