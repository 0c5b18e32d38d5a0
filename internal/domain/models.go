package domain

import "time"

type User struct {
	ID               int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Username         string
	Password         string
	StoreCreditCents int64
}

type Shop struct {
	ID                int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	UserID            int64
	Name              string
	CountryCode       string
	ProviderAccountID string // пустая строка — магазин не подключен к платежному провайдеру
	AdsEnabled        bool
}

type Listing struct {
	ID                 int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ShopID             int64
	Title              string
	PriceCents         int64
	Quantity           int32
	IsActive           bool
	SubscriptionID     string
	SubscriptionStatus string
}

// Order одна покупка одного лота одним покупателем. Все денежные поля — целые
// центы. Комиссии рассчитываются единожды в момент подтверждения оплаты и больше
// не меняются.
type Order struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	// BuyerID nil для гостевых заказов.
	BuyerID   *int64
	ListingID int64
	SellerID  int64
	ShopID    int64
	Currency  string

	ItemsSubtotalCents int64
	ShippingCents      int64
	GiftWrapCents      int64
	TaxCents           int64
	OrderSubtotalCents int64
	OrderTotalCents    int64

	PlatformFeeCents   int64
	ProcessingFeeCents int64
	AdFeeCents         int64
	FeesTotalCents     int64
	SellerPayoutCents  int64

	PaymentStatus PaymentStatusType
	// AdsEnabledAtSale замораживается из Shop.AdsEnabled в момент расчета, чтобы
	// последующее переключение флага не меняло историческую комиссию.
	AdsEnabledAtSale bool

	SessionID       string
	PaymentIntentID string

	RefundType        RefundTypeType
	RefundStatus      RefundStatusType
	RefundAmountCents int64
	RefundReason      string
	RefundedAt        *time.Time
}

// FeeTransaction неизменяемая запись одной компоненты комиссии. Для листинговых
// сборов OrderID == nil, вместо него заполняется период (месяц/год).
type FeeTransaction struct {
	ID          int64
	CreatedAt   time.Time
	OrderID     *int64
	ShopID      int64
	Type        FeeType
	AmountCents int64
	Description string
	PeriodMonth int32
	PeriodYear  int32
	Paid        bool
}

// CreditEntry одна подписанная запись кредитного леджера юзера.
// Положительная сумма — начисление, отрицательная — аудит списания.
type CreditEntry struct {
	ID          int64
	CreatedAt   time.Time
	UserID      int64
	Funder      string
	Reason      string
	AmountCents int64
	ExpiresAt   *time.Time
}

// Dispute спор по платежу, заведенный провайдером. Только для ручного
// разбирательства, автоматических переходов статуса заказа не вызывает.
type Dispute struct {
	ID                int64
	CreatedAt         time.Time
	ProviderDisputeID string
	PaymentIntentID   string
	Reason            string
	Status            string
}
