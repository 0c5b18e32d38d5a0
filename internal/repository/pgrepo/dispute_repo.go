package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/lavka-pay/internal/domain"
	"github.com/fsdevblog/lavka-pay/internal/repository/repoargs"
	"github.com/fsdevblog/lavka-pay/pkg/uow"
)

const disputeColumns = `id, created_at, provider_dispute_id, payment_intent_id, reason, status`

type DisputeRepository struct {
	conn uow.DBTX
}

func NewDisputeRepository(conn uow.DBTX) *DisputeRepository {
	return &DisputeRepository{conn: conn}
}

// Create заводит спор на ручное разбирательство. Повторная доставка того же
// события вернет ErrDuplicateKey по уникальному provider_dispute_id.
func (d *DisputeRepository) Create(ctx context.Context, args repoargs.DisputeCreate) (*domain.Dispute, error) {
	row := d.conn.QueryRow(ctx, `
		INSERT INTO disputes (provider_dispute_id, payment_intent_id, reason, status)
		VALUES ($1, $2, $3, 'needs_review')
		RETURNING `+disputeColumns,
		args.ProviderDisputeID, args.PaymentIntentID, args.Reason,
	)
	dispute, err := scanDispute(row)
	if err != nil {
		return nil, convertErr(err, "creating dispute `%s`", args.ProviderDisputeID)
	}
	return dispute, nil
}

func scanDispute(row pgx.Row) (*domain.Dispute, error) {
	var dispute domain.Dispute
	err := row.Scan(
		&dispute.ID,
		&dispute.CreatedAt,
		&dispute.ProviderDisputeID,
		&dispute.PaymentIntentID,
		&dispute.Reason,
		&dispute.Status,
	)
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}
