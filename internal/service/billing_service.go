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

// BillingService ежемесячный листинговый сбор: с каждого магазина — по
// фиксированной ставке за каждый активный лот. Запись в fee_transactions
// уникальна по (магазин, месяц, год), поэтому прогон безопасно повторять:
// уже обсчитанные магазины пропускаются.
type BillingService struct {
	uow                uow.UOW
	shopRepo           ShopRepository
	feeRepo            FeeTransactionRepository
	provider           PaymentProvider
	perProductFeeCents int64
	l                  *logrus.Entry
}

func NewBillingService(
	u uow.UOW,
	provider PaymentProvider,
	perProductFeeCents int64,
	l *logrus.Logger,
) (*BillingService, error) {
	shopRepo, shopRepoErr := uow.GetRepositoryAs[ShopRepository](u, uow.RepositoryName(repoargs.ShopRepoName))
	if shopRepoErr != nil {
		return nil, shopRepoErr
	}
	feeRepo, feeRepoErr := uow.GetRepositoryAs[FeeTransactionRepository](
		u, uow.RepositoryName(repoargs.FeeTransactionRepoName),
	)
	if feeRepoErr != nil {
		return nil, feeRepoErr
	}
	return &BillingService{
		uow:                u,
		shopRepo:           shopRepo,
		feeRepo:            feeRepo,
		provider:           provider,
		perProductFeeCents: perProductFeeCents,
		l: l.WithFields(logrus.Fields{
			"component": "billing",
		}),
	}, nil
}

// BillingRunResult итог прогона по периоду.
type BillingRunResult struct {
	PeriodMonth    int32
	PeriodYear     int32
	ShopsProcessed int
	FeesCreated    int
	FeesCollected  int
	Skipped        int
	Failed         int
}

// RunForPeriod обсчитывает все магазины с активными лотами за период.
// Сбой одного магазина не прерывает прогон: магазин попадает в Failed и будет
// дообсчитан следующим запуском. Если ни одной новой записи не создано,
// возвращается ErrDuplicatePeriod — период уже обсчитан целиком.
func (s *BillingService) RunForPeriod(ctx context.Context, month, year int32) (*BillingRunResult, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("running billing: invalid month %d", month)
	}

	shops, shopsErr := s.shopRepo.ShopsWithActiveListings(ctx)
	if shopsErr != nil {
		return nil, fmt.Errorf("running billing for %d-%02d: %w", year, month, shopsErr)
	}

	l := s.l.WithFields(logrus.Fields{"month": month, "year": year})
	result := &BillingRunResult{PeriodMonth: month, PeriodYear: year}

	for _, shop := range shops {
		result.ShopsProcessed++
		if err := s.billShop(ctx, shop, month, year, result); err != nil {
			result.Failed++
			l.WithError(err).WithField("shopID", shop.ShopID).Error("billing shop failed")
		}
	}

	l.WithFields(logrus.Fields{
		"shops":     result.ShopsProcessed,
		"created":   result.FeesCreated,
		"collected": result.FeesCollected,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	}).Info("billing run finished")

	if result.ShopsProcessed > 0 && result.FeesCreated == 0 && result.Failed == 0 {
		return result, domain.ErrDuplicatePeriod
	}
	return result, nil
}

func (s *BillingService) billShop(
	ctx context.Context,
	shop repoargs.ShopActiveListings,
	month, year int32,
	result *BillingRunResult,
) error {
	exists, existsErr := s.feeRepo.ListingFeeExists(ctx, shop.ShopID, month, year)
	if existsErr != nil {
		return fmt.Errorf("checking listing fee: %w", existsErr)
	}
	if exists {
		result.Skipped++
		return nil
	}

	amount := shop.ActiveListingCount * s.perProductFeeCents

	fee, createErr := s.feeRepo.CreateListingFee(ctx, repoargs.ListingFeeCreate{
		ShopID:      shop.ShopID,
		AmountCents: amount,
		Description: fmt.Sprintf("Monthly listing fee for %d-%02d (%d active listings)", year, month, shop.ActiveListingCount),
		PeriodMonth: month,
		PeriodYear:  year,
		Paid:        false,
	})
	if createErr != nil {
		if errors.Is(createErr, domain.ErrDuplicateKey) {
			// конкурентный прогон успел первым
			result.Skipped++
			return nil
		}
		return fmt.Errorf("creating listing fee: %w", createErr)
	}
	result.FeesCreated++

	if shop.ProviderAccountID == "" {
		// магазин без подключенного аккаунта: запись остается неоплаченной,
		// взыскание — вручную
		s.l.WithField("shopID", shop.ShopID).Warn("shop has no provider account, listing fee left unpaid")
		return nil
	}

	idempotencyKey := fmt.Sprintf("listing-fee-%d-%d-%02d", shop.ShopID, year, month)
	if _, collectErr := s.provider.CollectListingFee(
		ctx, shop.ProviderAccountID, amount, fee.Description, idempotencyKey,
	); collectErr != nil {
		// запись уже создана: повторное взыскание — забота следующего прогона
		// или ручного разбора, сам прогон не валим
		s.l.WithError(collectErr).WithField("shopID", shop.ShopID).Error("collecting listing fee failed")
		return nil
	}

	if paidErr := s.feeRepo.MarkListingFeePaid(ctx, fee.ID); paidErr != nil {
		return fmt.Errorf("marking listing fee paid: %w", paidErr)
	}
	result.FeesCollected++
	return nil
}
