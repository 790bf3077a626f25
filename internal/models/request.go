package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestType тип предложения покупателя
type RequestType string

const (
	RequestTypePurchase    RequestType = "purchase"
	RequestTypeTradeTarget RequestType = "trade-target"
	RequestTypeTradeOpen   RequestType = "trade-open"
)

// Valid проверяет, что тип запроса известен
func (t RequestType) Valid() bool {
	switch t {
	case RequestTypePurchase, RequestTypeTradeTarget, RequestTypeTradeOpen:
		return true
	}
	return false
}

// IsTrade сообщает, что запрос предполагает обмен на другой товар
func (t RequestType) IsTrade() bool {
	return t == RequestTypeTradeTarget || t == RequestTypeTradeOpen
}

// RequestStatus статус запроса
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusReserved  RequestStatus = "reserved" // принят продавцом
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// Request представляет предложение покупателя продавцу по объявлению
type Request struct {
	ID            uuid.UUID     `json:"id"`
	ItemID        uuid.UUID     `json:"item_id"`
	SellerID      uuid.UUID     `json:"seller_id"`
	BuyerID       uuid.UUID     `json:"buyer_id"`
	Type          RequestType   `json:"type"`
	Quantity      int           `json:"quantity"`
	Note          string        `json:"note,omitempty"`
	OfferedItemID *uuid.UUID    `json:"offered_item_id,omitempty"`
	Status        RequestStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
}

// IsParty сообщает, является ли пользователь покупателем или продавцом по запросу
func (r *Request) IsParty(userID uuid.UUID) bool {
	return userID == r.BuyerID || userID == r.SellerID
}

// Counterparty возвращает вторую сторону запроса
func (r *Request) Counterparty(userID uuid.UUID) uuid.UUID {
	if userID == r.BuyerID {
		return r.SellerID
	}
	return r.BuyerID
}

// Clone возвращает копию запроса
func (r *Request) Clone() *Request {
	c := *r
	return &c
}

// RequestFilter задает условия выборки запросов
type RequestFilter struct {
	ItemID   *uuid.UUID
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   RequestStatus // пустая строка - любой статус
}

// Match проверяет, подходит ли запрос под фильтр
func (f RequestFilter) Match(r *Request) bool {
	if f.ItemID != nil && r.ItemID != *f.ItemID {
		return false
	}
	if f.BuyerID != nil && r.BuyerID != *f.BuyerID {
		return false
	}
	if f.SellerID != nil && r.SellerID != *f.SellerID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}
