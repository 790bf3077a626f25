package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

const requestColumns = `id, item_id, seller_id, buyer_id, type, quantity, note,
	offered_item_id, status, created_at, updated_at, cancelled_at`

func scanRequest(row pgx.Row) (*models.Request, error) {
	var (
		r           models.Request
		typ, status string
	)
	err := row.Scan(
		&r.ID, &r.ItemID, &r.SellerID, &r.BuyerID, &typ, &r.Quantity, &r.Note,
		&r.OfferedItemID, &status, &r.CreatedAt, &r.UpdatedAt, &r.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	r.Type = models.RequestType(typ)
	r.Status = models.RequestStatus(status)
	return &r, nil
}

func (r *reader) GetRequest(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, `SELECT `+requestColumns+` FROM trade_requests WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "запрос", id)
	}
	return req, nil
}

func (r *reader) ListRequests(ctx context.Context, f models.RequestFilter) ([]*models.Request, error) {
	var c conds
	if f.ItemID != nil {
		c.add("item_id = $%[1]d", *f.ItemID)
	}
	if f.BuyerID != nil {
		c.add("buyer_id = $%[1]d", *f.BuyerID)
	}
	if f.SellerID != nil {
		c.add("seller_id = $%[1]d", *f.SellerID)
	}
	if f.Status != "" {
		c.add("status = $%[1]d", string(f.Status))
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+requestColumns+` FROM trade_requests`+c.where()+` ORDER BY created_at, id`,
		c.args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении запросов: %w", err)
	}
	return collectRows(rows, scanRequest)
}

func (t *pgTx) CreateRequest(ctx context.Context, r *models.Request) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO trade_requests (id, item_id, seller_id, buyer_id, type, quantity, note,
			offered_item_id, status, created_at, updated_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.ID, r.ItemID, r.SellerID, r.BuyerID, string(r.Type), r.Quantity, r.Note,
		r.OfferedItemID, string(r.Status), r.CreatedAt, r.UpdatedAt, r.CancelledAt)
	if err != nil {
		return fmt.Errorf("ошибка при создании запроса: %w", err)
	}
	return nil
}

func (t *pgTx) UpdateRequest(ctx context.Context, r *models.Request) error {
	tag, err := t.q.Exec(ctx, `
		UPDATE trade_requests
		SET status = $2, note = $3, updated_at = $4, cancelled_at = $5
		WHERE id = $1
	`, r.ID, string(r.Status), r.Note, r.UpdatedAt, r.CancelledAt)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении запроса: %w", err)
	}
	return mustAffect(tag, "запрос", r.ID)
}
