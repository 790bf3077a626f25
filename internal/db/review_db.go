package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

const reviewColumns = `id, item_id, transaction_id, from_user_id, to_user_id, rating, comment, created_at`

func scanReview(row pgx.Row) (*models.Review, error) {
	var r models.Review
	err := row.Scan(
		&r.ID, &r.ItemID, &r.TransactionID, &r.FromUserID, &r.ToUserID,
		&r.Rating, &r.Comment, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *reader) ListReviews(ctx context.Context, f models.ReviewFilter) ([]*models.Review, error) {
	var c conds
	if f.TransactionID != nil {
		c.add("transaction_id = $%[1]d", *f.TransactionID)
	}
	if f.FromUserID != nil {
		c.add("from_user_id = $%[1]d", *f.FromUserID)
	}
	if f.ToUserID != nil {
		c.add("to_user_id = $%[1]d", *f.ToUserID)
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews`+c.where()+` ORDER BY created_at, id`,
		c.args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении отзывов: %w", err)
	}
	return collectRows(rows, scanReview)
}

func (t *pgTx) CreateReview(ctx context.Context, r *models.Review) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO reviews (id, item_id, transaction_id, from_user_id, to_user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, r.ItemID, r.TransactionID, r.FromUserID, r.ToUserID, r.Rating, r.Comment, r.CreatedAt)
	if err != nil {
		return mapConstraint(fmt.Errorf("ошибка при создании отзыва: %w", err))
	}
	return nil
}
