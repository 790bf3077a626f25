package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus статус жалобы
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusResolved ReportStatus = "resolved"
	ReportStatusRejected ReportStatus = "rejected"
)

// Final сообщает, что жалоба уже рассмотрена
func (s ReportStatus) Final() bool {
	return s == ReportStatusResolved || s == ReportStatusRejected
}

// Report жалоба пользователя на объявление или другого пользователя
type Report struct {
	ID             uuid.UUID    `json:"id"`
	ReporterID     uuid.UUID    `json:"reporter_id"`
	ReportedItemID *uuid.UUID   `json:"reported_item_id,omitempty"`
	ReportedUserID *uuid.UUID   `json:"reported_user_id,omitempty"`
	Type           string       `json:"type"`
	Description    string       `json:"description"`
	Status         ReportStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`
	ResolvedBy     *uuid.UUID   `json:"resolved_by,omitempty"`
}

// Clone возвращает копию жалобы
func (r *Report) Clone() *Report {
	c := *r
	return &c
}
