package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// MaxMessageLength максимальная длина сообщения в символах
const MaxMessageLength = 2000

// SendMessage отправляет сообщение второй стороне запроса.
// Писать могут только покупатель и продавец, статус запроса не важен.
func (s *Service) SendMessage(ctx context.Context, requestID, senderID uuid.UUID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, s.done("send_message", fmt.Errorf("%w: пустое сообщение", ErrInvalidMessage))
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, s.done("send_message", fmt.Errorf("%w: больше %d символов", ErrInvalidMessage, MaxMessageLength))
	}

	r, err := s.GetRequest(ctx, requestID, senderID)
	if err != nil {
		return nil, s.done("send_message", err)
	}

	m := &models.Message{
		ID:         s.newID(),
		RequestID:  r.ID,
		ItemID:     r.ItemID,
		SenderID:   senderID,
		ReceiverID: r.Counterparty(senderID),
		Text:       text,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateMessage(ctx, m); err != nil {
		return nil, s.done("send_message", err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": m.RequestID,
		"message_id": m.ID,
		"user_id":    senderID,
	}).Debug("сообщение отправлено")

	s.emit(TradeEvent{
		Type:       EventMessageSent,
		ItemID:     m.ItemID,
		RequestID:  ptr(m.RequestID),
		ActorID:    senderID,
		Recipients: []uuid.UUID{m.ReceiverID},
		Timestamp:  m.CreatedAt,
		Message:    m.Clone(),
	})
	return m, s.done("send_message", nil)
}

// ListMessages возвращает переписку по запросу, старые первыми, и отмечает
// входящие сообщения пользователя прочитанными. В ответе is_read показывает
// состояние до этого вызова.
func (s *Service) ListMessages(ctx context.Context, requestID, userID uuid.UUID) ([]*models.Message, error) {
	r, err := s.GetRequest(ctx, requestID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, r.ID)
	if err != nil {
		return nil, err
	}

	for _, m := range messages {
		if m.ReceiverID == userID && !m.IsRead {
			if err := s.store.MarkMessagesRead(ctx, r.ID, userID); err != nil {
				return nil, err
			}
			break
		}
	}
	return messages, nil
}
