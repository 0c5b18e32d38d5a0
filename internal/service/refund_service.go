package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

// RefundService машина состояний заявок на возврат:
//
//	REQUESTED -> APPROVED -> PROCESSING -> COMPLETED  (CASH, завершает вебхук)
//	REQUESTED -> COMPLETED                            (CREDIT, мгновенно)
//	REQUESTED -> REJECTED
//
// Каждый переход — условный UPDATE по текущему статусу: из двух конкурентных
// решений по одной заявке пройдет ровно одно.
type RefundService struct {
	uow       uow.UOW
	orderRepo OrderRepository
	provider  PaymentProvider
	l         *logrus.Entry
}

func NewRefundService(u uow.UOW, provider PaymentProvider, l *logrus.Logger) (*RefundService, error) {
	orderRepo, repoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if repoErr != nil {
		return nil, repoErr
	}
	return &RefundService{
		uow:       u,
		orderRepo: orderRepo,
		provider:  provider,
		l: l.WithFields(logrus.Fields{
			"component": "refund",
		}),
	}, nil
}

// Request заводит заявку покупателя на возврат по оплаченному заказу.
// Отклоненная ранее заявка не мешает подать новую; любая открытая — мешает.
func (s *RefundService) Request(
	ctx context.Context,
	orderID int64,
	requesterID int64,
	refundType domain.RefundTypeType,
	amountCents int64,
	reason string,
) (*domain.Order, error) {
	order, findErr := s.orderRepo.FindByID(ctx, orderID)
	if findErr != nil {
		return nil, fmt.Errorf("requesting refund for order %d: %w", orderID, findErr)
	}

	// чужой заказ неотличим от несуществующего
	if order.BuyerID == nil || *order.BuyerID != requesterID {
		return nil, domain.ErrRecordNotFound
	}
	if order.PaymentStatus != domain.PaymentStatusPaid {
		return nil, domain.ErrOrderNotRefundable
	}
	if amountCents <= 0 || amountCents > order.OrderTotalCents {
		return nil, domain.ErrRefundAmountTooLarge
	}
	if refundType != domain.RefundTypeCash && refundType != domain.RefundTypeCredit {
		return nil, fmt.Errorf("requesting refund for order %d: unknown refund type `%s`", orderID, refundType)
	}

	updated, createErr := s.orderRepo.CreateRefundRequest(ctx, repoargs.CreateRefundRequest{
		OrderID:     orderID,
		Type:        refundType,
		AmountCents: amountCents,
		Reason:      reason,
	})
	if createErr != nil {
		if errors.Is(createErr, domain.ErrRecordNotFound) {
			// состояние ушло между чтением и апдейтом: заявка уже открыта
			// либо заказ перестал быть paid
			return nil, domain.ErrRefundConflict
		}
		return nil, fmt.Errorf("requesting refund for order %d: %w", orderID, createErr)
	}

	s.l.WithFields(logrus.Fields{
		"orderID": orderID,
		"type":    refundType,
		"amount":  amountCents,
	}).Info("refund requested")
	return updated, nil
}

// Approve одобряет заявку продавцом. Кредитный возврат завершается на месте,
// денежный уходит провайдеру и досиживает в PROCESSING до вебхука
// charge.refunded.
func (s *RefundService) Approve(ctx context.Context, orderID int64, sellerID int64) (*domain.Order, error) {
	order, findErr := s.orderRepo.FindByID(ctx, orderID)
	if findErr != nil {
		return nil, fmt.Errorf("approving refund for order %d: %w", orderID, findErr)
	}
	if order.SellerID != sellerID {
		return nil, domain.ErrRecordNotFound
	}

	switch order.RefundType {
	case domain.RefundTypeCredit:
		return s.approveCredit(ctx, order)
	case domain.RefundTypeCash:
		return s.approveCash(ctx, order)
	default:
		return nil, domain.ErrRefundConflict
	}
}

// approveCredit завершает кредитный возврат одной транзакцией: переход
// REQUESTED -> COMPLETED, заказ в refunded, начисление кредитов покупателю.
func (s *RefundService) approveCredit(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.BuyerID == nil {
		return nil, domain.ErrGuestCreditRefund
	}
	buyerID := *order.BuyerID

	var updated *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		transitioned, trErr := orderRepo.TransitionRefund(c, repoargs.TransitionRefund{
			OrderID:      order.ID,
			From:         domain.RefundStatusRequested,
			To:           domain.RefundStatusCompleted,
			MarkRefunded: true,
		})
		if trErr != nil {
			return trErr //nolint:wrapcheck
		}

		if grantErr := grantInTx(c, tx, repoargs.CreditEntryCreate{
			UserID:      buyerID,
			Funder:      domain.FunderPlatform,
			Reason:      domain.ReasonRefundForOrder(order.ID),
			AmountCents: transitioned.RefundAmountCents,
		}); grantErr != nil {
			return grantErr
		}

		updated = transitioned
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, domain.ErrRecordNotFound) {
			return nil, domain.ErrRefundConflict
		}
		return nil, fmt.Errorf("approving credit refund for order %d: %w", order.ID, txErr)
	}

	s.l.WithFields(logrus.Fields{
		"orderID": order.ID,
		"buyerID": buyerID,
		"amount":  updated.RefundAmountCents,
	}).Info("credit refund completed")
	return updated, nil
}

// approveCash трехшаговый денежный возврат: фиксация решения (REQUESTED ->
// APPROVED), запрос возврата у провайдера, перевод в PROCESSING. Если процесс
// упал между шагами, повторный Approve возобновляет заявку из APPROVED: ключ
// идемпотентности детерминирован от заказа, поэтому повторный вызов провайдера
// схлопывается в первый.
func (s *RefundService) approveCash(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	approved, gateErr := s.orderRepo.TransitionRefund(ctx, repoargs.TransitionRefund{
		OrderID: order.ID,
		From:    domain.RefundStatusRequested,
		To:      domain.RefundStatusApproved,
	})
	if gateErr != nil {
		if !errors.Is(gateErr, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("approving cash refund for order %d: %w", order.ID, gateErr)
		}
		if order.RefundStatus != domain.RefundStatusApproved {
			return nil, domain.ErrRefundConflict
		}
		// возобновление после сбоя между фиксацией и вызовом провайдера
		approved = order
		s.l.WithField("orderID", order.ID).Warn("resuming cash refund stuck in approved state")
	}

	idempotencyKey := fmt.Sprintf("refund-order-%d", order.ID)
	refundID, refundErr := s.provider.CreateRefund(ctx, approved.PaymentIntentID, approved.RefundAmountCents, idempotencyKey)
	if refundErr != nil {
		// заявка остается в APPROVED, следующий Approve повторит вызов
		return nil, fmt.Errorf("approving cash refund for order %d: %w", order.ID, refundErr)
	}

	processing, trErr := s.orderRepo.TransitionRefund(ctx, repoargs.TransitionRefund{
		OrderID: order.ID,
		From:    domain.RefundStatusApproved,
		To:      domain.RefundStatusProcessing,
	})
	if trErr != nil {
		if errors.Is(trErr, domain.ErrRecordNotFound) {
			// вебхук charge.refunded успел закрыть заявку раньше нас
			s.l.WithField("orderID", order.ID).Info("cash refund already completed by provider event")
			return s.orderRepo.FindByID(ctx, order.ID)
		}
		return nil, fmt.Errorf("approving cash refund for order %d: %w", order.ID, trErr)
	}

	s.l.WithFields(logrus.Fields{
		"orderID":          order.ID,
		"providerRefundID": refundID,
		"amount":           processing.RefundAmountCents,
	}).Info("cash refund sent to provider")
	return processing, nil
}

// Reject отклоняет заявку с обязательной причиной. Покупатель может подать
// новую заявку после отклонения.
func (s *RefundService) Reject(ctx context.Context, orderID int64, sellerID int64, reason string) (*domain.Order, error) {
	if reason == "" {
		return nil, domain.ErrRejectReasonRequired
	}

	order, findErr := s.orderRepo.FindByID(ctx, orderID)
	if findErr != nil {
		return nil, fmt.Errorf("rejecting refund for order %d: %w", orderID, findErr)
	}
	if order.SellerID != sellerID {
		return nil, domain.ErrRecordNotFound
	}

	updated, trErr := s.orderRepo.TransitionRefund(ctx, repoargs.TransitionRefund{
		OrderID:      orderID,
		From:         domain.RefundStatusRequested,
		To:           domain.RefundStatusRejected,
		RejectReason: reason,
	})
	if trErr != nil {
		if errors.Is(trErr, domain.ErrRecordNotFound) {
			return nil, domain.ErrRefundConflict
		}
		return nil, fmt.Errorf("rejecting refund for order %d: %w", orderID, trErr)
	}

	s.l.WithFields(logrus.Fields{"orderID": orderID, "reason": reason}).Info("refund rejected")
	return updated, nil
}
