package repoargs

import "github.com/fsdevblog/lavka-pay/internal/domain"

// OrderFeeCreate одна компонента комиссии заказа. Вставка идемпотентна по
// (order_id, type).
type OrderFeeCreate struct {
	OrderID     int64
	ShopID      int64
	Type        domain.FeeType
	AmountCents int64
	Description string
}

// ListingFeeCreate периодический листинговый сбор магазина, один на
// (shop_id, month, year).
type ListingFeeCreate struct {
	ShopID      int64
	AmountCents int64
	Description string
	PeriodMonth int32
	PeriodYear  int32
	Paid        bool
}
