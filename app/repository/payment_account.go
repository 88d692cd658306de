package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
)

var ErrPaymentAccountNotFound = errors.New("payment account not found")

const paymentAccountColumns = `
	creator_id, external_account_id,
	details_submitted, charges_enabled, payouts_enabled, requirements_json,
	refreshed_at, created_at, updated_at
`

type PaymentAccountRepository struct {
	db DBTX
}

func NewPaymentAccountRepository(db DBTX) *PaymentAccountRepository {
	return &PaymentAccountRepository{db: db}
}

// CreateIfAbsent lazily creates the row for a creator. An existing row is
// left untouched.
func (r *PaymentAccountRepository) CreateIfAbsent(ctx context.Context, creatorID string, now time.Time) error {
	query := `
		INSERT INTO payment_accounts (
			creator_id, details_submitted, charges_enabled, payouts_enabled, requirements_json, created_at, updated_at
		)
		VALUES (?, FALSE, FALSE, FALSE, '[]', ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query, creatorID, now, now); err != nil {
		if isDuplicateEntryError(err) {
			return nil
		}
		return err
	}
	return nil
}

// AttachExternalAccount stores the external account id only when none is on
// record yet. It reports whether this call won.
func (r *PaymentAccountRepository) AttachExternalAccount(ctx context.Context, creatorID, externalAccountID string, now time.Time) (bool, error) {
	query := `
		UPDATE payment_accounts SET
			external_account_id = ?,
			updated_at = ?
		WHERE creator_id = ? AND external_account_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, externalAccountID, now, creatorID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// OverwriteCapabilities replaces the flags and requirements with the given
// snapshot. It never merges with the stored values.
func (r *PaymentAccountRepository) OverwriteCapabilities(ctx context.Context, account *entity.PaymentAccount) error {
	requirementsJSON, err := serializeStringList(account.Requirements)
	if err != nil {
		return err
	}

	query := `
		UPDATE payment_accounts SET
			details_submitted = ?,
			charges_enabled = ?,
			payouts_enabled = ?,
			requirements_json = ?,
			refreshed_at = ?,
			updated_at = ?
		WHERE creator_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		account.DetailsSubmitted,
		account.ChargesEnabled,
		account.PayoutsEnabled,
		requirementsJSON,
		nullableTimeValue(account.RefreshedAt),
		account.UpdatedAt,
		account.CreatorID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentAccountNotFound
	}

	return nil
}

func (r *PaymentAccountRepository) FindByCreatorID(ctx context.Context, creatorID string) (*entity.PaymentAccount, error) {
	query := `SELECT ` + paymentAccountColumns + ` FROM payment_accounts WHERE creator_id = ?`

	account := &entity.PaymentAccount{}
	if err := scanPaymentAccount(r.db.QueryRowContext(ctx, query, creatorID), account); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return account, nil
}

func (r *PaymentAccountRepository) FindByExternalAccountID(ctx context.Context, externalAccountID string) (*entity.PaymentAccount, error) {
	query := `SELECT ` + paymentAccountColumns + ` FROM payment_accounts WHERE external_account_id = ? LIMIT 1`

	account := &entity.PaymentAccount{}
	if err := scanPaymentAccount(r.db.QueryRowContext(ctx, query, externalAccountID), account); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return account, nil
}

// ListDueRefresh returns onboarded accounts that are not yet fully capable and
// have not been refreshed since before.
func (r *PaymentAccountRepository) ListDueRefresh(ctx context.Context, before time.Time, limit int32) ([]*entity.PaymentAccount, error) {
	query := `SELECT ` + paymentAccountColumns + `
		FROM payment_accounts
		WHERE external_account_id IS NOT NULL
		  AND NOT (details_submitted AND charges_enabled AND payouts_enabled)
		  AND (refreshed_at IS NULL OR refreshed_at <= ?)
		ORDER BY updated_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*entity.PaymentAccount, 0)
	for rows.Next() {
		item := &entity.PaymentAccount{}
		if err := scanPaymentAccount(rows, item); err != nil {
			return nil, err
		}
		accounts = append(accounts, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

func scanPaymentAccount(scan rowScanner, account *entity.PaymentAccount) error {
	var externalAccountID sql.NullString
	var requirementsJSON string
	var refreshedAt sql.NullTime

	err := scan.Scan(
		&account.CreatorID,
		&externalAccountID,
		&account.DetailsSubmitted,
		&account.ChargesEnabled,
		&account.PayoutsEnabled,
		&requirementsJSON,
		&refreshedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return err
	}

	account.ExternalAccountID = stringPtrFromNull(externalAccountID)
	account.RefreshedAt = timePtrFromNull(refreshedAt)

	requirements, err := parseStringList(requirementsJSON)
	if err != nil {
		return err
	}
	account.Requirements = requirements

	return nil
}
