package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
)

type PurchaseGrantRepository struct {
	db DBTX
}

func NewPurchaseGrantRepository(db DBTX) *PurchaseGrantRepository {
	return &PurchaseGrantRepository{db: db}
}

// CreateIfAbsent inserts the grant unless one already exists for the same
// transaction id. The unique key on transaction_id is the only guard, so
// concurrent redeliveries race safely in the database. It reports whether
// this call created the row.
func (r *PurchaseGrantRepository) CreateIfAbsent(ctx context.Context, grant *entity.PurchaseGrant) (bool, error) {
	query := `
		INSERT INTO purchase_grants (
			transaction_id, viewer_id, video_id, amount_cents, currency, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		grant.TransactionID,
		grant.ViewerID,
		grant.VideoID,
		grant.AmountCents,
		grant.Currency,
		grant.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return false, nil
		}
		return false, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, err
	}
	grant.ID = uint64(id)

	return true, nil
}

func (r *PurchaseGrantRepository) FindByTransactionID(ctx context.Context, transactionID string) (*entity.PurchaseGrant, error) {
	query := `
		SELECT id, transaction_id, viewer_id, video_id, amount_cents, currency, created_at
		FROM purchase_grants
		WHERE transaction_id = ?
	`

	grant := &entity.PurchaseGrant{}
	if err := scanPurchaseGrant(r.db.QueryRowContext(ctx, query, transactionID), grant); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return grant, nil
}

func (r *PurchaseGrantRepository) ExistsForViewerVideo(ctx context.Context, viewerID, videoID string) (bool, error) {
	query := `
		SELECT 1
		FROM purchase_grants
		WHERE viewer_id = ? AND video_id = ?
		LIMIT 1
	`

	var one int
	err := r.db.QueryRowContext(ctx, query, viewerID, videoID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *PurchaseGrantRepository) ListByViewer(ctx context.Context, viewerID string, limit, offset int32) ([]*entity.PurchaseGrant, error) {
	query := `
		SELECT id, transaction_id, viewer_id, video_id, amount_cents, currency, created_at
		FROM purchase_grants
		WHERE viewer_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grants := make([]*entity.PurchaseGrant, 0)
	for rows.Next() {
		item := &entity.PurchaseGrant{}
		if err := scanPurchaseGrant(rows, item); err != nil {
			return nil, err
		}
		grants = append(grants, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return grants, nil
}

func scanPurchaseGrant(scan rowScanner, grant *entity.PurchaseGrant) error {
	return scan.Scan(
		&grant.ID,
		&grant.TransactionID,
		&grant.ViewerID,
		&grant.VideoID,
		&grant.AmountCents,
		&grant.Currency,
		&grant.CreatedAt,
	)
}
