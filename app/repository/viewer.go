package repository

import (
	"context"
	"database/sql"
	"strings"
)

// ViewerRepository resolves verified payer emails to viewer identities using
// the users table owned by the identity service.
type ViewerRepository struct {
	db DBTX
}

func NewViewerRepository(db DBTX) *ViewerRepository {
	return &ViewerRepository{db: db}
}

func (r *ViewerRepository) FindIDByEmail(ctx context.Context, email string) (string, error) {
	query := `
		SELECT id
		FROM users
		WHERE LOWER(email) = ?
		LIMIT 1
	`

	var id string
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return id, nil
}
