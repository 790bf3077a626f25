package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// CreateMessage сохраняет сообщение
func (s *Store) CreateMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[m.RequestID]; !ok {
		return fmt.Errorf("%w: запрос %s", lifecycle.ErrNotFound, m.RequestID)
	}
	s.messages[m.ID] = m.Clone()
	return nil
}

// ListMessages возвращает переписку по запросу, старые первыми
func (s *Store) ListMessages(_ context.Context, requestID uuid.UUID) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return collect(s.messages, nil, func(m *models.Message) bool { return m.RequestID == requestID }, messageCreated), nil
}

// MarkMessagesRead отмечает прочитанными входящие сообщения получателя
func (s *Store) MarkMessagesRead(_ context.Context, requestID, receiverID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.messages {
		if m.RequestID == requestID && m.ReceiverID == receiverID {
			m.IsRead = true
		}
	}
	return nil
}
