package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/service"
	"github.com/fsdevblog/lavka-pay/internal/transport/payment"
)

type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
}

// SettlementServicer интерфейс исключительно для моков.
type SettlementServicer interface {
	HandleEvent(ctx context.Context, event payment.Event) error
}

type CreditServicer interface {
	AvailableCredit(ctx context.Context, userID int64, now time.Time) (*service.CreditBalance, error)
}

type RefundServicer interface {
	Request(
		ctx context.Context,
		orderID int64,
		requesterID int64,
		refundType domain.RefundTypeType,
		amountCents int64,
		reason string,
	) (*domain.Order, error)
	Approve(ctx context.Context, orderID int64, sellerID int64) (*domain.Order, error)
	Reject(ctx context.Context, orderID int64, sellerID int64, reason string) (*domain.Order, error)
}

type BillingServicer interface {
	RunForPeriod(ctx context.Context, month, year int32) (*service.BillingRunResult, error)
}
