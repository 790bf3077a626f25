// Package moderation жалобы пользователей и действия администраторов
package moderation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// Store хранилище жалоб
type Store interface {
	CreateReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	// ListReports возвращает жалобы с данным статусом, старые первыми
	ListReports(ctx context.Context, status models.ReportStatus) ([]*models.Report, error)
	// ResolveReport записывает решение по жалобе. Если жалоба уже
	// рассмотрена, возвращает lifecycle.ErrInvalidState.
	ResolveReport(ctx context.Context, r *models.Report) error

	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service жалобы и модерация объявлений
type Service struct {
	store  Store
	engine *lifecycle.Service
	admins map[int64]struct{}
	now    func() time.Time
	newID  func() uuid.UUID
	log    logrus.FieldLogger
}

// NewService создает сервис модерации. Администраторы задаются Telegram ID.
func NewService(store Store, engine *lifecycle.Service, adminTelegramIDs []int64, log logrus.FieldLogger) *Service {
	admins := make(map[int64]struct{}, len(adminTelegramIDs))
	for _, id := range adminTelegramIDs {
		admins[id] = struct{}{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:  store,
		engine: engine,
		admins: admins,
		now:    engine.Now,
		newID:  uuid.New,
		log:    log,
	}
}

// CreateReportParams параметры новой жалобы
type CreateReportParams struct {
	ReporterID     uuid.UUID
	ReportedItemID *uuid.UUID
	ReportedUserID *uuid.UUID
	Type           string
	Description    string
}

// CreateReport сохраняет жалобу на объявление и/или пользователя
func (s *Service) CreateReport(ctx context.Context, p CreateReportParams) (*models.Report, error) {
	p.Type = strings.TrimSpace(p.Type)
	p.Description = strings.TrimSpace(p.Description)

	if p.Type == "" || p.Description == "" {
		return nil, fmt.Errorf("%w: нужны тип и описание", lifecycle.ErrInvalidReport)
	}
	if p.ReportedItemID == nil && p.ReportedUserID == nil {
		return nil, fmt.Errorf("%w: не указано объявление или пользователь", lifecycle.ErrInvalidReport)
	}
	if p.ReportedUserID != nil && *p.ReportedUserID == p.ReporterID {
		return nil, fmt.Errorf("%w: нельзя пожаловаться на себя", lifecycle.ErrInvalidReport)
	}
	if p.ReportedItemID != nil {
		if _, err := s.store.GetItem(ctx, *p.ReportedItemID); err != nil {
			return nil, err
		}
	}
	if p.ReportedUserID != nil {
		if _, err := s.store.GetUser(ctx, *p.ReportedUserID); err != nil {
			return nil, err
		}
	}

	r := &models.Report{
		ID:             s.newID(),
		ReporterID:     p.ReporterID,
		ReportedItemID: p.ReportedItemID,
		ReportedUserID: p.ReportedUserID,
		Type:           p.Type,
		Description:    p.Description,
		Status:         models.ReportStatusPending,
		CreatedAt:      s.now(),
	}
	if err := s.store.CreateReport(ctx, r); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"report_id": r.ID, "user_id": r.ReporterID, "type": r.Type}).Info("жалоба создана")
	return r, nil
}

// IsAdmin проверяет, что пользователь администратор
func (s *Service) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	_, ok := s.admins[u.TelegramID]
	return ok && u.TelegramID != 0, nil
}

func (s *Service) requireAdmin(ctx context.Context, userID uuid.UUID) error {
	ok, err := s.IsAdmin(ctx, userID)
	if errors.Is(err, lifecycle.ErrNotFound) {
		return fmt.Errorf("%w: пользователь %s не найден", lifecycle.ErrNotAuthorized, userID)
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: нужны права администратора", lifecycle.ErrNotAuthorized)
	}
	return nil
}

// ListReports возвращает жалобы с данным статусом, новые первыми. Только для администраторов.
func (s *Service) ListReports(ctx context.Context, adminID uuid.UUID, status models.ReportStatus) ([]*models.Report, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.ReportStatusPending
	}

	reports, err := s.store.ListReports(ctx, status)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// ResolveReport закрывает ожидающую жалобу решением resolved или rejected
func (s *Service) ResolveReport(ctx context.Context, reportID, adminID uuid.UUID, status models.ReportStatus) (*models.Report, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if !status.Final() {
		return nil, fmt.Errorf("%w: решение %q", lifecycle.ErrInvalidReport, status)
	}

	r, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r.Status != models.ReportStatusPending {
		return nil, fmt.Errorf("%w: жалоба в статусе %s", lifecycle.ErrInvalidState, r.Status)
	}

	now := s.now()
	r.Status = status
	r.ResolvedAt = &now
	r.ResolvedBy = &adminID
	if err := s.store.ResolveReport(ctx, r); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"report_id": r.ID, "user_id": adminID, "status": r.Status}).Info("жалоба рассмотрена")
	return r, nil
}

// RemoveItem снимает объявление по решению администратора через движок сделок,
// поэтому удерживаемое сделкой объявление снять нельзя
func (s *Service) RemoveItem(ctx context.Context, itemID, adminID uuid.UUID) (*models.Item, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.engine.RemoveItemByModerator(ctx, itemID, adminID)
}
