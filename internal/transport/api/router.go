package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lavka-pay/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
	// DefaultWebhookTimeout шире обычного: расчет заказа — несколько апдейтов в
	// одной транзакции.
	DefaultWebhookTimeout = 10 * time.Second
	// DefaultBillingTimeout прогон идет по всем магазинам с активными лотами.
	DefaultBillingTimeout = 60 * time.Second
)

const (
	PaymentWebhookRoute = "/webhooks/payment"

	RouteGroup         = "/api"
	RegisterRoute      = "/user/register"
	LoginRoute         = "/user/login"
	UserCreditRoute    = "/user/credit"
	RefundRequestRoute = "/orders/:orderID/refund"
	RefundApproveRoute = "/seller/orders/:orderID/refund/approve"
	RefundRejectRoute  = "/seller/orders/:orderID/refund/reject"

	AdminRouteGroup = "/api/admin"
	BillingRunRoute = "/billing/run"
)

type RouterArgs struct {
	Logger            *logrus.Logger
	UserService       UserServicer
	SettlementService SettlementServicer
	CreditService     CreditServicer
	RefundService     RefundServicer
	BillingService    BillingServicer
	JWTSecretKey      []byte
	WebhookSecret     []byte
	AdminKey          string
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	webhookHandler := NewWebhookHandler(args.SettlementService, args.WebhookSecret)
	creditHandler := NewCreditHandler(args.CreditService)
	refundHandler := NewRefundHandler(args.RefundService)
	billingHandler := NewBillingHandler(args.BillingService)

	// вебхук аутентифицируется подписью payload'а, а не JWT
	r.POST(PaymentWebhookRoute, webhookHandler.HandlePayment)

	api := r.Group(RouteGroup)
	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(UserCreditRoute, creditHandler.Index)
	api.POST(RefundRequestRoute, refundHandler.Request)
	api.POST(RefundApproveRoute, refundHandler.Approve)
	api.POST(RefundRejectRoute, refundHandler.Reject)

	admin := r.Group(AdminRouteGroup)
	admin.Use(middlewares.AdminKeyRequired(args.AdminKey))
	admin.POST(BillingRunRoute, billingHandler.Run)

	return r
}
