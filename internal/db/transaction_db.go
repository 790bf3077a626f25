package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

const transactionColumns = `id, item_id, request_id, seller_id, buyer_id, type, quantity, note,
	offered_item_id, status, created_at, reserved_at, seller_confirmed_at, buyer_confirmed_at, completed_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var (
		t           models.Transaction
		typ, status string
	)
	err := row.Scan(
		&t.ID, &t.ItemID, &t.RequestID, &t.SellerID, &t.BuyerID, &typ, &t.Quantity, &t.Note,
		&t.OfferedItemID, &status, &t.CreatedAt, &t.ReservedAt,
		&t.SellerConfirmedAt, &t.BuyerConfirmedAt, &t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Type = models.RequestType(typ)
	t.Status = models.TransactionStatus(status)
	return &t, nil
}

func (r *reader) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "сделка", id)
	}
	return t, nil
}

func (r *reader) ListTransactions(ctx context.Context, f models.TransactionFilter) ([]*models.Transaction, error) {
	var c conds
	if f.ItemID != nil {
		c.add("item_id = $%[1]d", *f.ItemID)
	}
	if f.BuyerID != nil {
		c.add("buyer_id = $%[1]d", *f.BuyerID)
	}
	if f.PartyID != nil {
		c.add("(buyer_id = $%[1]d OR seller_id = $%[1]d)", *f.PartyID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		c.add("status = ANY($%[1]d)", statuses)
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions`+c.where()+` ORDER BY created_at, id`,
		c.args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении сделок: %w", err)
	}
	return collectRows(rows, scanTransaction)
}

func (t *pgTx) CreateTransaction(ctx context.Context, tr *models.Transaction) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO transactions (id, item_id, request_id, seller_id, buyer_id, type, quantity, note,
			offered_item_id, status, created_at, reserved_at, seller_confirmed_at, buyer_confirmed_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, tr.ID, tr.ItemID, tr.RequestID, tr.SellerID, tr.BuyerID, string(tr.Type), tr.Quantity, tr.Note,
		tr.OfferedItemID, string(tr.Status), tr.CreatedAt, tr.ReservedAt,
		tr.SellerConfirmedAt, tr.BuyerConfirmedAt, tr.CompletedAt)
	if err != nil {
		return mapConstraint(fmt.Errorf("ошибка при создании сделки: %w", err))
	}
	return nil
}

func (t *pgTx) UpdateTransaction(ctx context.Context, tr *models.Transaction) error {
	tag, err := t.q.Exec(ctx, `
		UPDATE transactions SET
			request_id = $2, type = $3, quantity = $4, note = $5, offered_item_id = $6,
			status = $7, reserved_at = $8,
			seller_confirmed_at = $9, buyer_confirmed_at = $10, completed_at = $11
		WHERE id = $1
	`, tr.ID, tr.RequestID, string(tr.Type), tr.Quantity, tr.Note, tr.OfferedItemID,
		string(tr.Status), tr.ReservedAt,
		tr.SellerConfirmedAt, tr.BuyerConfirmedAt, tr.CompletedAt)
	if err != nil {
		return mapConstraint(fmt.Errorf("ошибка при обновлении сделки: %w", err))
	}
	return mustAffect(tag, "сделка", tr.ID)
}
