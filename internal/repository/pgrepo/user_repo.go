package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

const userColumns = `id, created_at, updated_at, username, password, store_credit_cents`

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

func (u *UserRepository) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING `+userColumns,
		user.Username, user.Password,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user `%s`", user.Username)
	}
	return created, nil
}

func (u *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by username `%s`", username)
	}
	return user, nil
}

func (u *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return user, nil
}

// FindByIDForUpdate блокирует строку юзера до конца транзакции. Все операции
// леджера начинаются с этой блокировки: два конкурентных списания одного юзера
// выполняются строго по очереди и не могут оба увидеть достаточный баланс.
func (u *UserRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "locking user by id %d", id)
	}
	return user, nil
}

// AdjustStoreCredit сдвигает денормализованный баланс на delta центов.
// Вызывается только в одной транзакции с мутацией записей леджера.
func (u *UserRepository) AdjustStoreCredit(ctx context.Context, id int64, deltaCents int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `
		UPDATE users
		SET store_credit_cents = store_credit_cents + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, deltaCents,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "adjusting store credit of user %d by %d", id, deltaCents)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Username,
		&user.Password,
		&user.StoreCreditCents,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
