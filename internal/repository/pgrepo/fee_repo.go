package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

const feeColumns = `id, created_at, order_id, shop_id, fee_type, amount_cents, description,
	period_month, period_year, paid`

type FeeTransactionRepository struct {
	conn uow.DBTX
}

func NewFeeTransactionRepository(conn uow.DBTX) *FeeTransactionRepository {
	return &FeeTransactionRepository{conn: conn}
}

// CreateOrderFees вставляет компоненты комиссии заказа. Повторная вставка той же
// пары (order_id, fee_type) молча пропускается — ретрай вебхука не плодит строк.
func (f *FeeTransactionRepository) CreateOrderFees(ctx context.Context, fees []repoargs.OrderFeeCreate) error {
	for _, fee := range fees {
		_, err := f.conn.Exec(ctx, `
			INSERT INTO fee_transactions (order_id, shop_id, fee_type, amount_cents, description)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (order_id, fee_type) WHERE order_id IS NOT NULL DO NOTHING`,
			fee.OrderID, fee.ShopID, fee.Type, fee.AmountCents, fee.Description,
		)
		if err != nil {
			return convertErr(err, "creating %s fee for order %d", fee.Type, fee.OrderID)
		}
	}
	return nil
}

// ListingFeeExists проверяет наличие листингового сбора магазина за период.
func (f *FeeTransactionRepository) ListingFeeExists(
	ctx context.Context,
	shopID int64,
	month, year int32,
) (bool, error) {
	var exists bool
	err := f.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM fee_transactions
			WHERE shop_id = $1 AND fee_type = 'listing' AND period_month = $2 AND period_year = $3
		)`,
		shopID, month, year,
	).Scan(&exists)
	if err != nil {
		return false, convertErr(err, "checking listing fee for shop %d period %d/%d", shopID, month, year)
	}
	return exists, nil
}

func (f *FeeTransactionRepository) CreateListingFee(
	ctx context.Context,
	args repoargs.ListingFeeCreate,
) (*domain.FeeTransaction, error) {
	row := f.conn.QueryRow(ctx, `
		INSERT INTO fee_transactions (shop_id, fee_type, amount_cents, description, period_month, period_year, paid)
		VALUES ($1, 'listing', $2, $3, $4, $5, $6)
		RETURNING `+feeColumns,
		args.ShopID, args.AmountCents, args.Description, args.PeriodMonth, args.PeriodYear, args.Paid,
	)
	fee, err := scanFee(row)
	if err != nil {
		return nil, convertErr(err, "creating listing fee for shop %d period %d/%d",
			args.ShopID, args.PeriodMonth, args.PeriodYear)
	}
	return fee, nil
}

func (f *FeeTransactionRepository) MarkListingFeePaid(ctx context.Context, id int64) error {
	tag, err := f.conn.Exec(ctx, `UPDATE fee_transactions SET paid = TRUE WHERE id = $1 AND fee_type = 'listing'`, id)
	if err != nil {
		return convertErr(err, "marking listing fee %d as paid", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "marking listing fee %d as paid", id)
	}
	return nil
}

// GetByOrderID возвращает комиссии заказа в порядке создания.
func (f *FeeTransactionRepository) GetByOrderID(ctx context.Context, orderID int64) ([]domain.FeeTransaction, error) {
	rows, err := f.conn.Query(ctx,
		`SELECT `+feeColumns+` FROM fee_transactions WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, convertErr(err, "getting fees for order %d", orderID)
	}
	defer rows.Close()

	var fees []domain.FeeTransaction
	for rows.Next() {
		fee, scanErr := scanFee(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning fee for order %d", orderID)
		}
		fees = append(fees, *fee)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting fees for order %d", orderID)
	}
	return fees, nil
}

func scanFee(row pgx.Row) (*domain.FeeTransaction, error) {
	var fee domain.FeeTransaction
	err := row.Scan(
		&fee.ID,
		&fee.CreatedAt,
		&fee.OrderID,
		&fee.ShopID,
		&fee.Type,
		&fee.AmountCents,
		&fee.Description,
		&fee.PeriodMonth,
		&fee.PeriodYear,
		&fee.Paid,
	)
	if err != nil {
		return nil, err
	}
	return &fee, nil
}
