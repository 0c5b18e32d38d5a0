package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

const listingColumns = `id, created_at, updated_at, shop_id, title, price_cents, quantity,
	is_active, subscription_id, subscription_status`

type ListingRepository struct {
	conn uow.DBTX
}

func NewListingRepository(conn uow.DBTX) *ListingRepository {
	return &ListingRepository{conn: conn}
}

func (l *ListingRepository) FindByID(ctx context.Context, id int64) (*domain.Listing, error) {
	row := l.conn.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	listing, err := scanListing(row)
	if err != nil {
		return nil, convertErr(err, "finding listing by id %d", id)
	}
	return listing, nil
}

// Activate включает лот после оплаты листинговой подписки и запоминает
// идентификатор и статус подписки провайдера.
func (l *ListingRepository) Activate(ctx context.Context, args repoargs.ActivateListing) (*domain.Listing, error) {
	row := l.conn.QueryRow(ctx, `
		UPDATE listings
		SET is_active = TRUE,
			subscription_id = $2,
			subscription_status = $3,
			updated_at = now()
		WHERE id = $1
		RETURNING `+listingColumns,
		args.ListingID, args.SubscriptionID, args.SubscriptionStatus,
	)
	listing, err := scanListing(row)
	if err != nil {
		return nil, convertErr(err, "activating listing %d", args.ListingID)
	}
	return listing, nil
}

// UpdateSubscriptionStatus синхронизирует статус подписки по событию провайдера.
// Активность лота следует за статусом: active/trialing включают, остальные
// выключают.
func (l *ListingRepository) UpdateSubscriptionStatus(
	ctx context.Context,
	subscriptionID string,
	status string,
) (int64, error) {
	tag, err := l.conn.Exec(ctx, `
		UPDATE listings
		SET subscription_status = $2,
			is_active = $2 IN ('active', 'trialing'),
			updated_at = now()
		WHERE subscription_id = $1`,
		subscriptionID, status,
	)
	if err != nil {
		return 0, convertErr(err, "updating subscription `%s` status to `%s`", subscriptionID, status)
	}
	return tag.RowsAffected(), nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var listing domain.Listing
	err := row.Scan(
		&listing.ID,
		&listing.CreatedAt,
		&listing.UpdatedAt,
		&listing.ShopID,
		&listing.Title,
		&listing.PriceCents,
		&listing.Quantity,
		&listing.IsActive,
		&listing.SubscriptionID,
		&listing.SubscriptionStatus,
	)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}
