package lifecycle

import (
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// EventType тип события жизненного цикла сделки
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestCancelled     EventType = "request_cancelled"
	EventRequestAccepted      EventType = "request_accepted"
	EventRequestRejected      EventType = "request_rejected"
	EventHandoffConfirmed     EventType = "handoff_confirmed"
	EventTransactionCompleted EventType = "transaction_completed"
	EventReviewCreated        EventType = "review_created"
	EventMessageSent          EventType = "message_sent"
	EventItemRemoved          EventType = "item_removed"
)

// TradeEvent событие, которое отправляется участникам после успешной операции
type TradeEvent struct {
	Type          EventType   `json:"type"`
	ItemID        uuid.UUID   `json:"item_id"`
	RequestID     *uuid.UUID  `json:"request_id,omitempty"`
	TransactionID *uuid.UUID  `json:"transaction_id,omitempty"`
	ActorID       uuid.UUID   `json:"actor_id"`
	Recipients    []uuid.UUID `json:"-"`
	Timestamp     time.Time   `json:"timestamp"`
	// Message заполняется только для message_sent
	Message *models.Message `json:"message,omitempty"`
}

// Notifier получает события после фиксации изменений.
// Реализация не должна блокировать вызывающего.
type Notifier interface {
	Notify(event TradeEvent)
}

type nopNotifier struct{}

func (nopNotifier) Notify(TradeEvent) {}
