package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/moderation"
)

var _ moderation.Store = (*Store)(nil)

const reportColumns = `id, reporter_id, reported_item_id, reported_user_id, type, description,
	status, created_at, resolved_at, resolved_by`

func scanReport(row pgx.Row) (*models.Report, error) {
	var (
		r      models.Report
		status string
	)
	err := row.Scan(
		&r.ID, &r.ReporterID, &r.ReportedItemID, &r.ReportedUserID, &r.Type, &r.Description,
		&status, &r.CreatedAt, &r.ResolvedAt, &r.ResolvedBy,
	)
	if err != nil {
		return nil, err
	}
	r.Status = models.ReportStatus(status)
	return &r, nil
}

// CreateReport сохраняет жалобу
func (s *Store) CreateReport(ctx context.Context, r *models.Report) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reports (id, reporter_id, reported_item_id, reported_user_id, type, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, r.ReporterID, r.ReportedItemID, r.ReportedUserID, r.Type, r.Description, string(r.Status), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении жалобы: %w", err)
	}
	return nil
}

// GetReport возвращает жалобу по ID
func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	r, err := scanReport(s.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "жалоба", id)
	}
	return r, nil
}

// ListReports возвращает жалобы с данным статусом, старые первыми
func (s *Store) ListReports(ctx context.Context, status models.ReportStatus) ([]*models.Report, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE status = $1 ORDER BY created_at, id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении жалоб: %w", err)
	}
	return collectRows(rows, scanReport)
}

// ResolveReport записывает решение только для жалобы в статусе pending
func (s *Store) ResolveReport(ctx context.Context, r *models.Report) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE reports SET status = $2, resolved_at = $3, resolved_by = $4
		WHERE id = $1 AND status = 'pending'
	`, r.ID, string(r.Status), r.ResolvedAt, r.ResolvedBy)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении жалобы: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: жалоба %s уже рассмотрена или не найдена", lifecycle.ErrInvalidState, r.ID)
	}
	return nil
}
