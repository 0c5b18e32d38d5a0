package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lavka-pay/internal/service/psswd"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

type AppServices struct {
	UserService       *UserService
	CreditService     *CreditService
	SettlementService *SettlementService
	RefundService     *RefundService
	BillingService    *BillingService
}

// FactoryArgs внешние зависимости и настройки сервисного слоя.
type FactoryArgs struct {
	Provider            PaymentProvider
	Notifier            Notifier
	Logger              *logrus.Logger
	JWTSecret           []byte
	WelcomeBonusCents   int64
	WelcomeBonusTTLDays int
	ListingFeeCents     int64
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork, args.JWTSecret, psswd.PasswordHash(""))
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	creditService, creditServiceErr := NewCreditService(unitOfWork, args.WelcomeBonusCents, args.WelcomeBonusTTLDays)
	if creditServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", creditServiceErr.Error())
	}

	settlementService, settlementServiceErr := NewSettlementService(
		unitOfWork, creditService, args.Notifier, args.Logger,
	)
	if settlementServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", settlementServiceErr.Error())
	}

	refundService, refundServiceErr := NewRefundService(unitOfWork, args.Provider, args.Logger)
	if refundServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", refundServiceErr.Error())
	}

	billingService, billingServiceErr := NewBillingService(
		unitOfWork, args.Provider, args.ListingFeeCents, args.Logger,
	)
	if billingServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", billingServiceErr.Error())
	}

	return &AppServices{
		UserService:       userService,
		CreditService:     creditService,
		SettlementService: settlementService,
		RefundService:     refundService,
		BillingService:    billingService,
	}, nil
}
