package service

import (
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/logger"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/internal/service/mocks"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
	uowmocks "github.com/fsdevblog/lavka-pay/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type RefundServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockUOW        *uowmocks.MockUOW
	mockTX         *uowmocks.MockTX
	mockOrderRepo  *mocks.MockOrderRepository
	mockUserRepo   *mocks.MockUserRepository
	mockCreditRepo *mocks.MockCreditEntryRepository
	mockProvider   *mocks.MockPaymentProvider
	refundService  *RefundService
}

func TestRefundServiceSuite(t *testing.T) {
	suite.Run(t, new(RefundServiceTestSuite))
}

func (s *RefundServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockCreditRepo = mocks.NewMockCreditEntryRepository(s.mockCtrl)
	s.mockProvider = mocks.NewMockPaymentProvider(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()

	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.CreditEntryRepoName)).
		Return(s.mockCreditRepo, nil).AnyTimes()

	refundService, servErr := NewRefundService(s.mockUOW, s.mockProvider, logger.New(os.Stdout))
	s.Require().NoError(servErr)
	s.refundService = refundService
}

func (s *RefundServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *RefundServiceTestSuite) expectDo() {
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		})
}

func (s *RefundServiceTestSuite) paidOrder() *domain.Order {
	buyerID := int64(1)
	return &domain.Order{
		ID:              42,
		BuyerID:         &buyerID,
		SellerID:        2,
		ShopID:          10,
		OrderTotalCents: 11340,
		PaymentStatus:   domain.PaymentStatusPaid,
		PaymentIntentID: "pi_1",
	}
}

func (s *RefundServiceTestSuite) TestRequest() {
	order := s.paidOrder()
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)

	requested := *order
	requested.RefundType = domain.RefundTypeCredit
	requested.RefundStatus = domain.RefundStatusRequested
	requested.RefundAmountCents = 1000

	s.mockOrderRepo.EXPECT().
		CreateRefundRequest(gomock.Any(), repoargs.CreateRefundRequest{
			OrderID:     42,
			Type:        domain.RefundTypeCredit,
			AmountCents: 1000,
			Reason:      "item damaged",
		}).
		Return(&requested, nil)

	got, err := s.refundService.Request(context.Background(), 42, 1, domain.RefundTypeCredit, 1000, "item damaged")
	s.Require().NoError(err)
	s.Equal(domain.RefundStatusRequested, got.RefundStatus)
}

func (s *RefundServiceTestSuite) TestRequestValidation() {
	cases := []struct {
		name        string
		mutate      func(o *domain.Order)
		requesterID int64
		amount      int64
		wantErr     error
	}{
		{
			name:        "foreign order looks like missing",
			mutate:      func(*domain.Order) {},
			requesterID: 99,
			amount:      1000,
			wantErr:     domain.ErrRecordNotFound,
		},
		{
			name: "pending order is not refundable",
			mutate: func(o *domain.Order) {
				o.PaymentStatus = domain.PaymentStatusPending
			},
			requesterID: 1,
			amount:      1000,
			wantErr:     domain.ErrOrderNotRefundable,
		},
		{
			name:        "amount above order total",
			mutate:      func(*domain.Order) {},
			requesterID: 1,
			amount:      11341,
			wantErr:     domain.ErrRefundAmountTooLarge,
		},
		{
			name:        "non-positive amount",
			mutate:      func(*domain.Order) {},
			requesterID: 1,
			amount:      0,
			wantErr:     domain.ErrRefundAmountTooLarge,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			order := s.paidOrder()
			t.mutate(order)
			s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)

			_, err := s.refundService.Request(
				context.Background(), 42, t.requesterID, domain.RefundTypeCredit, t.amount, "reason",
			)
			s.Require().ErrorIs(err, t.wantErr)
		})
	}
}

func (s *RefundServiceTestSuite) TestRequestConflict() {
	order := s.paidOrder()
	order.RefundStatus = domain.RefundStatusRequested

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)
	// условный апдейт не нашел строку: заявка уже открыта
	s.mockOrderRepo.EXPECT().
		CreateRefundRequest(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.refundService.Request(context.Background(), 42, 1, domain.RefundTypeCash, 1000, "reason")
	s.Require().ErrorIs(err, domain.ErrRefundConflict)
}

func (s *RefundServiceTestSuite) TestApproveCredit() {
	order := s.paidOrder()
	order.RefundType = domain.RefundTypeCredit
	order.RefundStatus = domain.RefundStatusRequested
	order.RefundAmountCents = 1000

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)

	completed := *order
	completed.RefundStatus = domain.RefundStatusCompleted
	completed.PaymentStatus = domain.PaymentStatusRefunded

	s.expectDo()
	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), repoargs.TransitionRefund{
			OrderID:      42,
			From:         domain.RefundStatusRequested,
			To:           domain.RefundStatusCompleted,
			MarkRefunded: true,
		}).
		Return(&completed, nil)

	// начисление кредитов покупателю в той же транзакции
	s.mockUserRepo.EXPECT().FindByIDForUpdate(gomock.Any(), int64(1)).Return(&domain.User{ID: 1}, nil)
	s.mockCreditRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, args repoargs.CreditEntryCreate) {
			s.Equal(int64(1), args.UserID)
			s.Equal(int64(1000), args.AmountCents)
			s.Equal("REFUND_FOR_ORDER_42", args.Reason)
			s.Nil(args.ExpiresAt)
		}).
		Return(&domain.CreditEntry{ID: 9}, nil)
	s.mockUserRepo.EXPECT().
		AdjustStoreCredit(gomock.Any(), int64(1), int64(1000)).
		Return(&domain.User{ID: 1}, nil)

	got, err := s.refundService.Approve(context.Background(), 42, 2)
	s.Require().NoError(err)
	s.Equal(domain.RefundStatusCompleted, got.RefundStatus)
	s.Equal(domain.PaymentStatusRefunded, got.PaymentStatus)
}

func (s *RefundServiceTestSuite) TestApproveCash() {
	order := s.paidOrder()
	order.RefundType = domain.RefundTypeCash
	order.RefundStatus = domain.RefundStatusRequested
	order.RefundAmountCents = 500

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)

	approved := *order
	approved.RefundStatus = domain.RefundStatusApproved

	processing := approved
	processing.RefundStatus = domain.RefundStatusProcessing

	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), repoargs.TransitionRefund{
			OrderID: 42,
			From:    domain.RefundStatusRequested,
			To:      domain.RefundStatusApproved,
		}).
		Return(&approved, nil)

	s.mockProvider.EXPECT().
		CreateRefund(gomock.Any(), "pi_1", int64(500), "refund-order-42").
		Return("re_1", nil)

	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), repoargs.TransitionRefund{
			OrderID: 42,
			From:    domain.RefundStatusApproved,
			To:      domain.RefundStatusProcessing,
		}).
		Return(&processing, nil)

	got, err := s.refundService.Approve(context.Background(), 42, 2)
	s.Require().NoError(err)
	// завершение придет вебхуком charge.refunded
	s.Equal(domain.RefundStatusProcessing, got.RefundStatus)
}

func (s *RefundServiceTestSuite) TestApproveCashResumesAfterCrash() {
	// процесс упал между фиксацией решения и вызовом провайдера:
	// заявка застряла в APPROVED, повторный Approve довозит ее до PROCESSING
	order := s.paidOrder()
	order.RefundType = domain.RefundTypeCash
	order.RefundStatus = domain.RefundStatusApproved
	order.RefundAmountCents = 500

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)
	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), repoargs.TransitionRefund{
			OrderID: 42,
			From:    domain.RefundStatusRequested,
			To:      domain.RefundStatusApproved,
		}).
		Return(nil, domain.ErrRecordNotFound)

	s.mockProvider.EXPECT().
		CreateRefund(gomock.Any(), "pi_1", int64(500), "refund-order-42").
		Return("re_1", nil)

	processing := *order
	processing.RefundStatus = domain.RefundStatusProcessing
	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), repoargs.TransitionRefund{
			OrderID: 42,
			From:    domain.RefundStatusApproved,
			To:      domain.RefundStatusProcessing,
		}).
		Return(&processing, nil)

	got, err := s.refundService.Approve(context.Background(), 42, 2)
	s.Require().NoError(err)
	s.Equal(domain.RefundStatusProcessing, got.RefundStatus)
}

func (s *RefundServiceTestSuite) TestApproveCashRetryKeepsIdempotencyKey() {
	// обе попытки Approve уходят к провайдеру с одним ключом: вторая заявка
	// на возврат у провайдера не появится
	order := s.paidOrder()
	order.RefundType = domain.RefundTypeCash
	order.RefundStatus = domain.RefundStatusRequested
	order.RefundAmountCents = 500

	var keys []string

	// первая попытка: решение зафиксировано, провайдер недоступен
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)
	approved := *order
	approved.RefundStatus = domain.RefundStatusApproved
	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), repoargs.TransitionRefund{
			OrderID: 42,
			From:    domain.RefundStatusRequested,
			To:      domain.RefundStatusApproved,
		}).
		Return(&approved, nil)
	s.mockProvider.EXPECT().
		CreateRefund(gomock.Any(), "pi_1", int64(500), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ int64, key string) (string, error) {
			keys = append(keys, key)
			return "", errors.New("provider unavailable")
		})

	_, err := s.refundService.Approve(context.Background(), 42, 2)
	s.Require().Error(err)

	// вторая попытка возобновляется из APPROVED
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(&approved, nil)
	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), repoargs.TransitionRefund{
			OrderID: 42,
			From:    domain.RefundStatusRequested,
			To:      domain.RefundStatusApproved,
		}).
		Return(nil, domain.ErrRecordNotFound)
	s.mockProvider.EXPECT().
		CreateRefund(gomock.Any(), "pi_1", int64(500), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ int64, key string) (string, error) {
			keys = append(keys, key)
			return "re_1", nil
		})
	processing := approved
	processing.RefundStatus = domain.RefundStatusProcessing
	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), repoargs.TransitionRefund{
			OrderID: 42,
			From:    domain.RefundStatusApproved,
			To:      domain.RefundStatusProcessing,
		}).
		Return(&processing, nil)

	got, approveErr := s.refundService.Approve(context.Background(), 42, 2)
	s.Require().NoError(approveErr)
	s.Equal(domain.RefundStatusProcessing, got.RefundStatus)

	s.Require().Len(keys, 2)
	s.Equal(keys[0], keys[1])
}

func (s *RefundServiceTestSuite) TestApproveCashCompletedByWebhookFirst() {
	order := s.paidOrder()
	order.RefundType = domain.RefundTypeCash
	order.RefundStatus = domain.RefundStatusRequested
	order.RefundAmountCents = 500

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)

	approved := *order
	approved.RefundStatus = domain.RefundStatusApproved
	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), gomock.Any()).
		Return(&approved, nil)

	s.mockProvider.EXPECT().
		CreateRefund(gomock.Any(), "pi_1", int64(500), "refund-order-42").
		Return("re_1", nil)

	// вебхук charge.refunded закрыл заявку между вызовом провайдера и нашим
	// переходом в PROCESSING
	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), repoargs.TransitionRefund{
			OrderID: 42,
			From:    domain.RefundStatusApproved,
			To:      domain.RefundStatusProcessing,
		}).
		Return(nil, domain.ErrRecordNotFound)

	completed := *order
	completed.RefundStatus = domain.RefundStatusCompleted
	completed.PaymentStatus = domain.PaymentStatusRefunded
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(&completed, nil)

	got, err := s.refundService.Approve(context.Background(), 42, 2)
	s.Require().NoError(err)
	s.Equal(domain.RefundStatusCompleted, got.RefundStatus)
}

func (s *RefundServiceTestSuite) TestApproveConflict() {
	order := s.paidOrder()
	order.RefundType = domain.RefundTypeCash
	order.RefundStatus = domain.RefundStatusRejected

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)
	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.refundService.Approve(context.Background(), 42, 2)
	s.Require().ErrorIs(err, domain.ErrRefundConflict)
}

func (s *RefundServiceTestSuite) TestApproveWrongSeller() {
	order := s.paidOrder()
	order.RefundType = domain.RefundTypeCash
	order.RefundStatus = domain.RefundStatusRequested

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)

	_, err := s.refundService.Approve(context.Background(), 42, 999)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *RefundServiceTestSuite) TestReject() {
	order := s.paidOrder()
	order.RefundType = domain.RefundTypeCash
	order.RefundStatus = domain.RefundStatusRequested

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)

	rejected := *order
	rejected.RefundStatus = domain.RefundStatusRejected

	s.mockOrderRepo.EXPECT().
		TransitionRefund(gomock.Any(), repoargs.TransitionRefund{
			OrderID:      42,
			From:         domain.RefundStatusRequested,
			To:           domain.RefundStatusRejected,
			RejectReason: "out of policy",
		}).
		Return(&rejected, nil)

	got, err := s.refundService.Reject(context.Background(), 42, 2, "out of policy")
	s.Require().NoError(err)
	s.Equal(domain.RefundStatusRejected, got.RefundStatus)
}

func (s *RefundServiceTestSuite) TestRejectRequiresReason() {
	_, err := s.refundService.Reject(context.Background(), 42, 2, "")
	s.Require().ErrorIs(err, domain.ErrRejectReasonRequired)
}
