package models

import (
	"time"

	"github.com/google/uuid"
)

// Message сообщение в переписке сторон по запросу
type Message struct {
	ID         uuid.UUID `json:"id"`
	RequestID  uuid.UUID `json:"request_id"`
	ItemID     uuid.UUID `json:"item_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Text       string    `json:"text"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// Clone возвращает копию сообщения
func (m *Message) Clone() *Message {
	c := *m
	return &c
}
