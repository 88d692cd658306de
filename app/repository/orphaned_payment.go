package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
)

type OrphanedPaymentRepository struct {
	db DBTX
}

func NewOrphanedPaymentRepository(db DBTX) *OrphanedPaymentRepository {
	return &OrphanedPaymentRepository{db: db}
}

// Record inserts the orphan or, on redelivery of the same transaction, bumps
// its occurrence counter and last-seen time.
func (r *OrphanedPaymentRepository) Record(ctx context.Context, orphan *entity.OrphanedPayment) error {
	query := `
		INSERT INTO orphaned_payments (
			transaction_id, payer_email, video_id, amount_cents, currency, occurrences, first_seen_at, last_seen_at
		)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON DUPLICATE KEY UPDATE
			occurrences = occurrences + 1,
			last_seen_at = VALUES(last_seen_at)
	`

	_, err := r.db.ExecContext(ctx, query,
		orphan.TransactionID,
		orphan.PayerEmail,
		orphan.VideoID,
		orphan.AmountCents,
		orphan.Currency,
		orphan.FirstSeenAt,
		orphan.LastSeenAt,
	)
	return err
}

func (r *OrphanedPaymentRepository) List(ctx context.Context, limit, offset int32) ([]*entity.OrphanedPayment, error) {
	query := `
		SELECT id, transaction_id, payer_email, video_id, amount_cents, currency, occurrences, first_seen_at, last_seen_at
		FROM orphaned_payments
		ORDER BY last_seen_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.OrphanedPayment, 0)
	for rows.Next() {
		item := &entity.OrphanedPayment{}
		if err := rows.Scan(
			&item.ID,
			&item.TransactionID,
			&item.PayerEmail,
			&item.VideoID,
			&item.AmountCents,
			&item.Currency,
			&item.Occurrences,
			&item.FirstSeenAt,
			&item.LastSeenAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
