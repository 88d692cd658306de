package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
)

type VideoRepository struct {
	db DBTX
}

func NewVideoRepository(db DBTX) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*entity.Video, error) {
	query := `
		SELECT id, creator_id, title, price_cents
		FROM videos
		WHERE id = ?
	`

	video := &entity.Video{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&video.ID,
		&video.CreatorID,
		&video.Title,
		&video.PriceCents,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return video, nil
}
