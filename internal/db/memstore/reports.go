package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/moderation"
)

var _ moderation.Store = (*Store)(nil)

// CreateReport сохраняет жалобу
func (s *Store) CreateReport(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[r.ID] = r.Clone()
	return nil
}

// GetReport возвращает жалобу по ID
func (s *Store) GetReport(_ context.Context, id uuid.UUID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: жалоба %s", lifecycle.ErrNotFound, id)
	}
	return r.Clone(), nil
}

// ListReports возвращает жалобы с данным статусом
func (s *Store) ListReports(_ context.Context, status models.ReportStatus) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return collect(s.reports, nil, func(r *models.Report) bool { return r.Status == status }, reportCreated), nil
}

// ResolveReport записывает решение, если жалоба еще ожидает рассмотрения
func (s *Store) ResolveReport(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.reports[r.ID]
	if !ok {
		return fmt.Errorf("%w: жалоба %s", lifecycle.ErrNotFound, r.ID)
	}
	if current.Status != models.ReportStatusPending {
		return fmt.Errorf("%w: жалоба в статусе %s", lifecycle.ErrInvalidState, current.Status)
	}
	s.reports[r.ID] = r.Clone()
	return nil
}
