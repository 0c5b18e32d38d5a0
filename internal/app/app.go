package app

import (
	"context"
	"fmt"

	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"

	"github.com/fsdevblog/lavka-pay/internal/transport/billing"
	"github.com/fsdevblog/lavka-pay/internal/transport/notify"
	"github.com/fsdevblog/lavka-pay/internal/transport/payment"

	"github.com/fsdevblog/lavka-pay/pkg/uow"

	"github.com/fsdevblog/lavka-pay/internal/config"
	"github.com/fsdevblog/lavka-pay/internal/repository/pgrepo"
	"github.com/fsdevblog/lavka-pay/internal/service"
	"github.com/fsdevblog/lavka-pay/internal/transport/api"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	"os/signal"
	"syscall"

	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	providerClient := payment.NewClient(a.Config.PaymentAPIURL, a.Config.PaymentAPIKey)
	notifyClient := notify.New(a.Config.NotifyURL)

	services, sErr := service.Factory(unitOfWork, service.FactoryArgs{
		Provider:            providerClient,
		Notifier:            notifyClient,
		Logger:              a.Logger,
		JWTSecret:           []byte(a.Config.JWTUserSecret),
		WelcomeBonusCents:   a.Config.WelcomeBonusCents,
		WelcomeBonusTTLDays: a.Config.WelcomeBonusTTLDays,
		ListingFeeCents:     a.Config.ListingFeeCents,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:            a.Logger,
		UserService:       services.UserService,
		SettlementService: services.SettlementService,
		CreditService:     services.CreditService,
		RefundService:     services.RefundService,
		BillingService:    services.BillingService,
		JWTSecretKey:      []byte(a.Config.JWTUserSecret),
		WebhookSecret:     []byte(a.Config.PaymentWebhookSecret),
		AdminKey:          a.Config.AdminKey,
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	runner := billing.New(services.BillingService, conn, a.Config.BillingInterval, a.Logger)
	go runner.Run(notifyCtx)

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.ShopRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewShopRepository(dbtx)
		},
		repoargs.ListingRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewListingRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		repoargs.FeeTransactionRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewFeeTransactionRepository(dbtx)
		},
		repoargs.CreditEntryRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCreditEntryRepository(dbtx)
		},
		repoargs.DisputeRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewDisputeRepository(dbtx)
		},
	}

	for name, factoryFn := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factoryFn); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
