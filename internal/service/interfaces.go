package service

import (
	"context"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	FindBySessionIDForUpdate(ctx context.Context, sessionID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, args repoargs.MarkPaid) (*domain.Order, error)
	MarkRefundedByPaymentIntent(ctx context.Context, paymentIntentID string) (int64, error)
	CountPaidByBuyer(ctx context.Context, buyerID int64) (int64, error)
	CreateRefundRequest(ctx context.Context, args repoargs.CreateRefundRequest) (*domain.Order, error)
	TransitionRefund(ctx context.Context, args repoargs.TransitionRefund) (*domain.Order, error)
}

type FeeTransactionRepository interface {
	CreateOrderFees(ctx context.Context, fees []repoargs.OrderFeeCreate) error
	ListingFeeExists(ctx context.Context, shopID int64, month, year int32) (bool, error)
	CreateListingFee(ctx context.Context, args repoargs.ListingFeeCreate) (*domain.FeeTransaction, error)
	MarkListingFeePaid(ctx context.Context, id int64) error
	GetByOrderID(ctx context.Context, orderID int64) ([]domain.FeeTransaction, error)
}

type CreditEntryRepository interface {
	GetByUserID(ctx context.Context, userID int64) ([]domain.CreditEntry, error)
	GetByUserIDForUpdate(ctx context.Context, userID int64) ([]domain.CreditEntry, error)
	Create(ctx context.Context, args repoargs.CreditEntryCreate) (*domain.CreditEntry, error)
	UpdateAmount(ctx context.Context, id int64, amountCents int64) error
	Delete(ctx context.Context, id int64) error
	HasWelcomeBonus(ctx context.Context, userID int64) (bool, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.User, error)
	AdjustStoreCredit(ctx context.Context, id int64, deltaCents int64) (*domain.User, error)
}

type ShopRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Shop, error)
	ShopsWithActiveListings(ctx context.Context) ([]repoargs.ShopActiveListings, error)
}

type ListingRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Listing, error)
	Activate(ctx context.Context, args repoargs.ActivateListing) (*domain.Listing, error)
	UpdateSubscriptionStatus(ctx context.Context, subscriptionID string, status string) (int64, error)
}

type DisputeRepository interface {
	Create(ctx context.Context, args repoargs.DisputeCreate) (*domain.Dispute, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

// PaymentProvider внешняя платежная система. Движок не двигает деньги сам —
// только просит провайдера. Ключ идемпотентности детерминирован от операции:
// повтор после сбоя уходит с тем же ключом и не создает вторую операцию.
type PaymentProvider interface {
	CreateRefund(ctx context.Context, paymentIntentID string, amountCents int64, idempotencyKey string) (string, error)
	CollectListingFee(
		ctx context.Context,
		providerAccountID string,
		amountCents int64,
		description string,
		idempotencyKey string,
	) (string, error)
}

// Notifier внешний сервис уведомлений. Ошибки отправки никогда не валят расчет.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, orderID int64, buyerID *int64, orderTotalCents int64, currency string) error
}
