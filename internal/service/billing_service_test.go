package service

import (
	"context"
	"os"
	"testing"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/logger"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/internal/service/mocks"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
	uowmocks "github.com/fsdevblog/lavka-pay/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BillingServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockUOW        *uowmocks.MockUOW
	mockShopRepo   *mocks.MockShopRepository
	mockFeeRepo    *mocks.MockFeeTransactionRepository
	mockProvider   *mocks.MockPaymentProvider
	billingService *BillingService
}

func TestBillingServiceSuite(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}

func (s *BillingServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockShopRepo = mocks.NewMockShopRepository(s.mockCtrl)
	s.mockFeeRepo = mocks.NewMockFeeTransactionRepository(s.mockCtrl)
	s.mockProvider = mocks.NewMockPaymentProvider(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.ShopRepoName)).
		Return(s.mockShopRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.FeeTransactionRepoName)).
		Return(s.mockFeeRepo, nil).AnyTimes()

	billingService, servErr := NewBillingService(s.mockUOW, s.mockProvider, 20, logger.New(os.Stdout))
	s.Require().NoError(servErr)
	s.billingService = billingService
}

func (s *BillingServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *BillingServiceTestSuite) TestRunForPeriod() {
	shops := []repoargs.ShopActiveListings{
		{ShopID: 1, ProviderAccountID: "acct_1", ActiveListingCount: 12},
		{ShopID: 2, ProviderAccountID: "", ActiveListingCount: 3},
	}
	s.mockShopRepo.EXPECT().ShopsWithActiveListings(gomock.Any()).Return(shops, nil)

	s.mockFeeRepo.EXPECT().ListingFeeExists(gomock.Any(), int64(1), int32(8), int32(2026)).Return(false, nil)
	s.mockFeeRepo.EXPECT().ListingFeeExists(gomock.Any(), int64(2), int32(8), int32(2026)).Return(false, nil)

	// 12 лотов * 20 центов
	s.mockFeeRepo.EXPECT().
		CreateListingFee(gomock.Any(), repoargs.ListingFeeCreate{
			ShopID:      1,
			AmountCents: 240,
			Description: "Monthly listing fee for 2026-08 (12 active listings)",
			PeriodMonth: 8,
			PeriodYear:  2026,
			Paid:        false,
		}).
		Return(&domain.FeeTransaction{ID: 100, Description: "Monthly listing fee for 2026-08 (12 active listings)"}, nil)
	s.mockProvider.EXPECT().
		CollectListingFee(
			gomock.Any(), "acct_1", int64(240),
			"Monthly listing fee for 2026-08 (12 active listings)", "listing-fee-1-2026-08",
		).
		Return("ch_1", nil)
	s.mockFeeRepo.EXPECT().MarkListingFeePaid(gomock.Any(), int64(100)).Return(nil)

	// магазин без платежного аккаунта: запись создается, но остается неоплаченной
	s.mockFeeRepo.EXPECT().
		CreateListingFee(gomock.Any(), gomock.Any()).
		Return(&domain.FeeTransaction{ID: 101}, nil)

	result, err := s.billingService.RunForPeriod(context.Background(), 8, 2026)
	s.Require().NoError(err)

	s.Equal(2, result.ShopsProcessed)
	s.Equal(2, result.FeesCreated)
	s.Equal(1, result.FeesCollected)
	s.Equal(0, result.Skipped)
	s.Equal(0, result.Failed)
}

func (s *BillingServiceTestSuite) TestRunForPeriodAlreadyBilled() {
	shops := []repoargs.ShopActiveListings{
		{ShopID: 1, ProviderAccountID: "acct_1", ActiveListingCount: 5},
		{ShopID: 2, ProviderAccountID: "acct_2", ActiveListingCount: 7},
	}
	s.mockShopRepo.EXPECT().ShopsWithActiveListings(gomock.Any()).Return(shops, nil)
	s.mockFeeRepo.EXPECT().ListingFeeExists(gomock.Any(), int64(1), int32(7), int32(2026)).Return(true, nil)
	s.mockFeeRepo.EXPECT().ListingFeeExists(gomock.Any(), int64(2), int32(7), int32(2026)).Return(true, nil)

	result, err := s.billingService.RunForPeriod(context.Background(), 7, 2026)
	s.Require().ErrorIs(err, domain.ErrDuplicatePeriod)
	s.Equal(2, result.Skipped)
	s.Zero(result.FeesCreated)
}

func (s *BillingServiceTestSuite) TestRunForPeriodConcurrentCreate() {
	shops := []repoargs.ShopActiveListings{
		{ShopID: 1, ProviderAccountID: "acct_1", ActiveListingCount: 5},
	}
	s.mockShopRepo.EXPECT().ShopsWithActiveListings(gomock.Any()).Return(shops, nil)
	s.mockFeeRepo.EXPECT().ListingFeeExists(gomock.Any(), int64(1), int32(8), int32(2026)).Return(false, nil)
	// параллельный прогон вставил запись между проверкой и вставкой
	s.mockFeeRepo.EXPECT().CreateListingFee(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDuplicateKey)

	result, err := s.billingService.RunForPeriod(context.Background(), 8, 2026)
	s.Require().ErrorIs(err, domain.ErrDuplicatePeriod)
	s.Equal(1, result.Skipped)
}

func (s *BillingServiceTestSuite) TestRunForPeriodCollectFailureIsNotFatal() {
	shops := []repoargs.ShopActiveListings{
		{ShopID: 1, ProviderAccountID: "acct_1", ActiveListingCount: 5},
	}
	s.mockShopRepo.EXPECT().ShopsWithActiveListings(gomock.Any()).Return(shops, nil)
	s.mockFeeRepo.EXPECT().ListingFeeExists(gomock.Any(), int64(1), int32(8), int32(2026)).Return(false, nil)
	s.mockFeeRepo.EXPECT().
		CreateListingFee(gomock.Any(), gomock.Any()).
		Return(&domain.FeeTransaction{ID: 100}, nil)
	s.mockProvider.EXPECT().
		CollectListingFee(gomock.Any(), "acct_1", int64(100), gomock.Any(), "listing-fee-1-2026-08").
		Return("", errors.New("provider unavailable"))

	result, err := s.billingService.RunForPeriod(context.Background(), 8, 2026)
	s.Require().NoError(err)

	// запись создана и осталась неоплаченной
	s.Equal(1, result.FeesCreated)
	s.Zero(result.FeesCollected)
	s.Zero(result.Failed)
}

func (s *BillingServiceTestSuite) TestRunForPeriodShopFailureContinues() {
	shops := []repoargs.ShopActiveListings{
		{ShopID: 1, ProviderAccountID: "acct_1", ActiveListingCount: 5},
		{ShopID: 2, ProviderAccountID: "acct_2", ActiveListingCount: 2},
	}
	s.mockShopRepo.EXPECT().ShopsWithActiveListings(gomock.Any()).Return(shops, nil)

	s.mockFeeRepo.EXPECT().
		ListingFeeExists(gomock.Any(), int64(1), int32(8), int32(2026)).
		Return(false, errors.New("connection reset"))

	s.mockFeeRepo.EXPECT().ListingFeeExists(gomock.Any(), int64(2), int32(8), int32(2026)).Return(false, nil)
	s.mockFeeRepo.EXPECT().
		CreateListingFee(gomock.Any(), gomock.Any()).
		Return(&domain.FeeTransaction{ID: 101}, nil)
	s.mockProvider.EXPECT().
		CollectListingFee(gomock.Any(), "acct_2", int64(40), gomock.Any(), "listing-fee-2-2026-08").
		Return("ch_2", nil)
	s.mockFeeRepo.EXPECT().MarkListingFeePaid(gomock.Any(), int64(101)).Return(nil)

	result, err := s.billingService.RunForPeriod(context.Background(), 8, 2026)
	s.Require().NoError(err)

	s.Equal(1, result.Failed)
	s.Equal(1, result.FeesCreated)
	s.Equal(1, result.FeesCollected)
}

func (s *BillingServiceTestSuite) TestRunForPeriodInvalidMonth() {
	_, err := s.billingService.RunForPeriod(context.Background(), 13, 2026)
	s.Require().Error(err)
}
