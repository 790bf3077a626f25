package models

import (
	"time"

	"github.com/google/uuid"
)

// Review представляет отзыв одной стороны сделки о другой
type Review struct {
	ID            uuid.UUID `json:"id"`
	ItemID        uuid.UUID `json:"item_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	FromUserID    uuid.UUID `json:"from_user_id"`
	ToUserID      uuid.UUID `json:"to_user_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

// Clone возвращает копию отзыва
func (r *Review) Clone() *Review {
	c := *r
	return &c
}

// ReviewStatus показывает, кто из участников сделки уже оставил отзыв
type ReviewStatus struct {
	BuyerReviewed  bool `json:"buyer_reviewed"`
	SellerReviewed bool `json:"seller_reviewed"`
}

// RatingSummary агрегированный рейтинг пользователя
type RatingSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// ReviewFilter задает условия выборки отзывов
type ReviewFilter struct {
	TransactionID *uuid.UUID
	FromUserID    *uuid.UUID
	ToUserID      *uuid.UUID
}

// Match проверяет, подходит ли отзыв под фильтр
func (f ReviewFilter) Match(r *Review) bool {
	if f.TransactionID != nil && r.TransactionID != *f.TransactionID {
		return false
	}
	if f.FromUserID != nil && r.FromUserID != *f.FromUserID {
		return false
	}
	if f.ToUserID != nil && r.ToUserID != *f.ToUserID {
		return false
	}
	return true
}
