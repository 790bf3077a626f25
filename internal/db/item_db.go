package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

const itemColumns = `id, seller_id, title, description, price::text,
	mode_sale, mode_trade_target, mode_trade_open, trade_target_note,
	quantity, status, reserved_for_user_id, reserved_at, sold_at, created_at, updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	var (
		item   models.Item
		price  string
		status string
	)
	err := row.Scan(
		&item.ID, &item.SellerID, &item.Title, &item.Description, &price,
		&item.Modes.Sale, &item.Modes.TradeTarget, &item.Modes.TradeOpen, &item.TradeTargetNote,
		&item.Quantity, &status, &item.ReservedForUserID, &item.ReservedAt, &item.SoldAt,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("некорректная цена %q: %w", price, err)
	}
	item.Status = models.ItemStatus(status)
	return &item, nil
}

// CreateItem сохраняет новое объявление
func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO items (id, seller_id, title, description, price,
			mode_sale, mode_trade_target, mode_trade_open, trade_target_note,
			quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, item.ID, item.SellerID, item.Title, item.Description, item.Price,
		item.Modes.Sale, item.Modes.TradeTarget, item.Modes.TradeOpen, item.TradeTargetNote,
		item.Quantity, string(item.Status), item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при создании объявления: %w", err)
	}
	return nil
}

func (r *reader) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "объявление", id)
	}
	return item, nil
}

func (r *reader) ListItemsBySeller(ctx context.Context, sellerID uuid.UUID) ([]*models.Item, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE seller_id = $1
		ORDER BY created_at, id
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении объявлений: %w", err)
	}
	return collectRows(rows, scanItem)
}

func (t *pgTx) UpdateItem(ctx context.Context, item *models.Item) error {
	tag, err := t.q.Exec(ctx, `
		UPDATE items SET
			title = $2, description = $3, price = $4,
			mode_sale = $5, mode_trade_target = $6, mode_trade_open = $7, trade_target_note = $8,
			quantity = $9, status = $10, reserved_for_user_id = $11, reserved_at = $12,
			sold_at = $13, updated_at = $14
		WHERE id = $1
	`, item.ID, item.Title, item.Description, item.Price,
		item.Modes.Sale, item.Modes.TradeTarget, item.Modes.TradeOpen, item.TradeTargetNote,
		item.Quantity, string(item.Status), item.ReservedForUserID, item.ReservedAt,
		item.SoldAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении объявления: %w", err)
	}
	return mustAffect(tag, "объявление", item.ID)
}
