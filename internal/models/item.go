package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus статус объявления
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusReserved ItemStatus = "reserved"
	ItemStatusSold     ItemStatus = "sold"
	ItemStatusRemoved  ItemStatus = "removed"
)

// TradeModes определяет, какие виды сделок разрешены для объявления
type TradeModes struct {
	Sale        bool `json:"sale"`
	TradeTarget bool `json:"trade_target"`
	TradeOpen   bool `json:"trade_open"`
}

// Item представляет объявление в системе
type Item struct {
	ID                uuid.UUID       `json:"id"`
	SellerID          uuid.UUID       `json:"seller_id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"` // 0 - только обмен
	Modes             TradeModes      `json:"modes"`
	TradeTargetNote   string          `json:"trade_target_note,omitempty"`
	Quantity          int             `json:"quantity"`
	Status            ItemStatus      `json:"status"`
	ReservedForUserID *uuid.UUID      `json:"reserved_for_user_id,omitempty"`
	ReservedAt        *time.Time      `json:"reserved_at,omitempty"`
	SoldAt            *time.Time      `json:"sold_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TradeOnly сообщает, что у объявления нет цены и его можно только обменять
func (i *Item) TradeOnly() bool {
	return i.Price.IsZero()
}

// Allows проверяет, разрешен ли данный тип запроса для объявления
func (i *Item) Allows(t RequestType) bool {
	switch t {
	case RequestTypePurchase:
		return i.Modes.Sale && !i.TradeOnly()
	case RequestTypeTradeTarget:
		return i.Modes.TradeTarget
	case RequestTypeTradeOpen:
		return i.Modes.TradeOpen
	}
	return false
}

// AcceptsRequests сообщает, можно ли оставлять новые запросы на объявление.
// Забронированное объявление принимает запросы, они ждут решения продавца.
func (i *Item) AcceptsRequests() bool {
	return i.Status == ItemStatusActive || i.Status == ItemStatusReserved
}

// Clone возвращает копию объявления
func (i *Item) Clone() *Item {
	c := *i
	return &c
}
