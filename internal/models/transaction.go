package models

import (
	"time"

	"github.com/google/uuid"
)

// HandoffWindow срок, в течение которого стороны должны подтвердить передачу товара
const HandoffWindow = 7 * 24 * time.Hour

// TransactionStatus статус сделки
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusReserved  TransactionStatus = "reserved"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusDeclined  TransactionStatus = "declined"
)

// Holds сообщает, что сделка удерживает объявление за покупателем
func (s TransactionStatus) Holds() bool {
	return s == TransactionStatusReserved || s == TransactionStatusCompleted
}

// Party роль участника сделки
type Party string

const (
	PartyNone   Party = ""
	PartyBuyer  Party = "buyer"
	PartySeller Party = "seller"
)

// Transaction представляет согласованную сделку между продавцом и покупателем
type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	ItemID            uuid.UUID         `json:"item_id"`
	RequestID         uuid.UUID         `json:"request_id"`
	SellerID          uuid.UUID         `json:"seller_id"`
	BuyerID           uuid.UUID         `json:"buyer_id"`
	Type              RequestType       `json:"type"`
	Quantity          int               `json:"quantity"`
	Note              string            `json:"note,omitempty"`
	OfferedItemID     *uuid.UUID        `json:"offered_item_id,omitempty"`
	Status            TransactionStatus `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
	ReservedAt        *time.Time        `json:"reserved_at,omitempty"`
	SellerConfirmedAt *time.Time        `json:"seller_confirmed_at,omitempty"`
	BuyerConfirmedAt  *time.Time        `json:"buyer_confirmed_at,omitempty"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
}

// PartyOf возвращает роль пользователя в сделке
func (t *Transaction) PartyOf(userID uuid.UUID) Party {
	switch userID {
	case t.BuyerID:
		return PartyBuyer
	case t.SellerID:
		return PartySeller
	}
	return PartyNone
}

// Counterparty возвращает второго участника сделки
func (t *Transaction) Counterparty(userID uuid.UUID) uuid.UUID {
	if userID == t.BuyerID {
		return t.SellerID
	}
	return t.BuyerID
}

// ConfirmedBy сообщает, подтвердила ли сторона передачу
func (t *Transaction) ConfirmedBy(p Party) bool {
	switch p {
	case PartyBuyer:
		return t.BuyerConfirmedAt != nil
	case PartySeller:
		return t.SellerConfirmedAt != nil
	}
	return false
}

// Confirm отмечает подтверждение передачи стороной p.
// Повторное подтверждение не меняет уже установленное время.
func (t *Transaction) Confirm(p Party, at time.Time) {
	switch p {
	case PartyBuyer:
		if t.BuyerConfirmedAt == nil {
			t.BuyerConfirmedAt = &at
		}
	case PartySeller:
		if t.SellerConfirmedAt == nil {
			t.SellerConfirmedAt = &at
		}
	}
}

// BothConfirmed - единственная проверка завершенности передачи
func (t *Transaction) BothConfirmed() bool {
	return t.BuyerConfirmedAt != nil && t.SellerConfirmedAt != nil
}

// HandoffDeadline возвращает крайний срок подтверждения передачи
func (t *Transaction) HandoffDeadline(window time.Duration) *time.Time {
	if t.ReservedAt == nil {
		return nil
	}
	d := t.ReservedAt.Add(window)
	return &d
}

// HandoffExpired сообщает, истекло ли окно подтверждения на момент now.
// Ровно window после бронирования еще допустимо.
func (t *Transaction) HandoffExpired(now time.Time, window time.Duration) bool {
	if t.ReservedAt == nil {
		return false
	}
	return now.Sub(*t.ReservedAt) > window
}

// Clone возвращает копию сделки
func (t *Transaction) Clone() *Transaction {
	c := *t
	return &c
}

// TransactionFilter задает условия выборки сделок
type TransactionFilter struct {
	ItemID   *uuid.UUID
	BuyerID  *uuid.UUID
	PartyID  *uuid.UUID // покупатель или продавец
	Statuses []TransactionStatus
}

// Match проверяет, подходит ли сделка под фильтр
func (f TransactionFilter) Match(t *Transaction) bool {
	if f.ItemID != nil && t.ItemID != *f.ItemID {
		return false
	}
	if f.BuyerID != nil && t.BuyerID != *f.BuyerID {
		return false
	}
	if f.PartyID != nil && t.BuyerID != *f.PartyID && t.SellerID != *f.PartyID {
		return false
	}
	if len(f.Statuses) > 0 {
		for _, s := range f.Statuses {
			if t.Status == s {
				return true
			}
		}
		return false
	}
	return true
}
