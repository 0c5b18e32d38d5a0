package repoargs

// ShopActiveListings магазин с количеством лотов, у которых quantity > 0.
// Строки с нулевым количеством в выборку биллинга не попадают.
type ShopActiveListings struct {
	ShopID             int64
	ProviderAccountID  string
	ActiveListingCount int64
}

// ActivateListing активация лота после оплаты листинговой подписки.
type ActivateListing struct {
	ListingID          int64
	SubscriptionID     string
	SubscriptionStatus string
}

// DisputeCreate запись спора для ручного разбирательства. Вставка идемпотентна
// по provider_dispute_id.
type DisputeCreate struct {
	ProviderDisputeID string
	PaymentIntentID   string
	Reason            string
}
