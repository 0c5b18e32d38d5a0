package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

const shopColumns = `id, created_at, updated_at, user_id, name, country_code, provider_account_id, ads_enabled`

type ShopRepository struct {
	conn uow.DBTX
}

func NewShopRepository(conn uow.DBTX) *ShopRepository {
	return &ShopRepository{conn: conn}
}

func (s *ShopRepository) FindByID(ctx context.Context, id int64) (*domain.Shop, error) {
	row := s.conn.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = $1`, id)
	shop, err := scanShop(row)
	if err != nil {
		return nil, convertErr(err, "finding shop by id %d", id)
	}
	return shop, nil
}

// ShopsWithActiveListings возвращает магазины, у которых есть хотя бы один лот
// с quantity > 0, вместе с количеством таких лотов. Основа месячного биллинга.
func (s *ShopRepository) ShopsWithActiveListings(ctx context.Context) ([]repoargs.ShopActiveListings, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT s.id, s.provider_account_id, count(l.id)
		FROM shops s
		JOIN listings l ON l.shop_id = s.id AND l.quantity > 0
		GROUP BY s.id, s.provider_account_id
		ORDER BY s.id`)
	if err != nil {
		return nil, convertErr(err, "getting shops with active listings")
	}
	defer rows.Close()

	var result []repoargs.ShopActiveListings
	for rows.Next() {
		var item repoargs.ShopActiveListings
		if scanErr := rows.Scan(&item.ShopID, &item.ProviderAccountID, &item.ActiveListingCount); scanErr != nil {
			return nil, convertErr(scanErr, "scanning shop active listings")
		}
		result = append(result, item)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting shops with active listings")
	}
	return result, nil
}

func scanShop(row pgx.Row) (*domain.Shop, error) {
	var shop domain.Shop
	err := row.Scan(
		&shop.ID,
		&shop.CreatedAt,
		&shop.UpdatedAt,
		&shop.UserID,
		&shop.Name,
		&shop.CountryCode,
		&shop.ProviderAccountID,
		&shop.AdsEnabled,
	)
	if err != nil {
		return nil, err
	}
	return &shop, nil
}
