package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

const messageColumns = `id, request_id, item_id, sender_id, receiver_id, text, is_read, created_at`

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.RequestID, &m.ItemID, &m.SenderID, &m.ReceiverID, &m.Text, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMessage сохраняет сообщение по запросу
func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, request_id, item_id, sender_id, receiver_id, text, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.RequestID, m.ItemID, m.SenderID, m.ReceiverID, m.Text, m.IsRead, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении сообщения: %w", err)
	}
	return nil
}

// ListMessages возвращает переписку по запросу, старые первыми
func (s *Store) ListMessages(ctx context.Context, requestID uuid.UUID) ([]*models.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE request_id = $1 ORDER BY created_at, id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении сообщений: %w", err)
	}
	return collectRows(rows, scanMessage)
}

// MarkMessagesRead отмечает прочитанными входящие сообщения получателя
func (s *Store) MarkMessagesRead(ctx context.Context, requestID, receiverID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE request_id = $1 AND receiver_id = $2 AND NOT is_read
	`, requestID, receiverID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении статуса прочтения: %w", err)
	}
	return nil
}
