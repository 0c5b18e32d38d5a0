package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

const creditColumns = `id, created_at, user_id, funder, reason, amount_cents, expires_at`

// creditOrder порядок потребления кредитов: сначала истекающие (ближайшая дата
// первой), бессрочные в конце, при равенстве — по дате создания.
const creditOrder = `ORDER BY expires_at ASC NULLS LAST, created_at ASC, id ASC`

type CreditEntryRepository struct {
	conn uow.DBTX
}

func NewCreditEntryRepository(conn uow.DBTX) *CreditEntryRepository {
	return &CreditEntryRepository{conn: conn}
}

func (c *CreditEntryRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.CreditEntry, error) {
	return c.getByUserID(ctx, userID, false)
}

// GetByUserIDForUpdate то же, но с блокировкой строк. Вызывается только внутри
// uow.Do — вместе с блокировкой строки юзера сериализует конкурентные списания.
func (c *CreditEntryRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) ([]domain.CreditEntry, error) {
	return c.getByUserID(ctx, userID, true)
}

func (c *CreditEntryRepository) getByUserID(
	ctx context.Context,
	userID int64,
	forUpdate bool,
) ([]domain.CreditEntry, error) {
	query := `SELECT ` + creditColumns + ` FROM credit_entries WHERE user_id = $1 ` + creditOrder
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := c.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, convertErr(err, "getting credit entries for user %d", userID)
	}
	defer rows.Close()

	var entries []domain.CreditEntry
	for rows.Next() {
		entry, scanErr := scanCreditEntry(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning credit entry for user %d", userID)
		}
		entries = append(entries, *entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting credit entries for user %d", userID)
	}
	return entries, nil
}

func (c *CreditEntryRepository) Create(
	ctx context.Context,
	args repoargs.CreditEntryCreate,
) (*domain.CreditEntry, error) {
	row := c.conn.QueryRow(ctx, `
		INSERT INTO credit_entries (user_id, funder, reason, amount_cents, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+creditColumns,
		args.UserID, args.Funder, args.Reason, args.AmountCents, args.ExpiresAt,
	)
	entry, err := scanCreditEntry(row)
	if err != nil {
		return nil, convertErr(err, "creating credit entry `%s` for user %d", args.Reason, args.UserID)
	}
	return entry, nil
}

// UpdateAmount уменьшает запись-грант при частичном использовании.
func (c *CreditEntryRepository) UpdateAmount(ctx context.Context, id int64, amountCents int64) error {
	tag, err := c.conn.Exec(ctx,
		`UPDATE credit_entries SET amount_cents = $2 WHERE id = $1`,
		id, amountCents,
	)
	if err != nil {
		return convertErr(err, "updating credit entry %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "updating credit entry %d", id)
	}
	return nil
}

// Delete удаляет полностью использованную запись-грант.
func (c *CreditEntryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := c.conn.Exec(ctx, `DELETE FROM credit_entries WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting credit entry %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting credit entry %d", id)
	}
	return nil
}

// HasWelcomeBonus проверяет существование приветственного бонуса у юзера.
// Существование записи блокирует повторную выдачу; гонку двух конкурентных
// расчетов закрывает частичный уникальный индекс по (user_id, reason).
func (c *CreditEntryRepository) HasWelcomeBonus(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := c.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM credit_entries WHERE user_id = $1 AND reason = $2)`,
		userID, domain.ReasonWelcomeBonus,
	).Scan(&exists)
	if err != nil {
		return false, convertErr(err, "checking welcome bonus for user %d", userID)
	}
	return exists, nil
}

func scanCreditEntry(row pgx.Row) (*domain.CreditEntry, error) {
	var entry domain.CreditEntry
	err := row.Scan(
		&entry.ID,
		&entry.CreatedAt,
		&entry.UserID,
		&entry.Funder,
		&entry.Reason,
		&entry.AmountCents,
		&entry.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
