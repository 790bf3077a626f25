package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// CreateRequestParams параметры нового запроса покупателя
type CreateRequestParams struct {
	ItemID        uuid.UUID
	BuyerID       uuid.UUID
	Type          models.RequestType
	Quantity      int
	Note          string
	OfferedItemID *uuid.UUID
}

// RequestRole направление запросов относительно пользователя
type RequestRole string

const (
	RequestsSent     RequestRole = "sent"
	RequestsReceived RequestRole = "received"
)

// CreateRequest создает запрос покупателя на покупку или обмен
func (s *Service) CreateRequest(ctx context.Context, p CreateRequestParams) (*models.Request, error) {
	if !p.Type.Valid() {
		return nil, s.done("create_request", fmt.Errorf("%w: %q", ErrInvalidRequestType, p.Type))
	}

	var created *models.Request
	err := s.store.WithItemLock(ctx, p.ItemID, func(tx Tx) error {
		item, err := tx.GetItem(ctx, p.ItemID)
		if err != nil {
			return err
		}

		if item.SellerID == p.BuyerID {
			return ErrSelfDeal
		}
		if !item.AcceptsRequests() {
			return fmt.Errorf("%w: объявление в статусе %s", ErrInvalidState, item.Status)
		}
		if !item.Allows(p.Type) {
			return fmt.Errorf("%w: %s", ErrTradeModeDisabled, p.Type)
		}
		if p.Quantity < 1 || p.Quantity > item.Quantity {
			return fmt.Errorf("%w: запрошено %d, доступно %d", ErrInvalidQuantity, p.Quantity, item.Quantity)
		}

		var offered *uuid.UUID
		if p.Type.IsTrade() {
			if err := s.checkOffer(ctx, tx, item, p); err != nil {
				return err
			}
			offered = ptr(*p.OfferedItemID)
		}

		now := s.now()
		r := &models.Request{
			ID:            s.newID(),
			ItemID:        item.ID,
			SellerID:      item.SellerID,
			BuyerID:       p.BuyerID,
			Type:          p.Type,
			Quantity:      p.Quantity,
			Note:          p.Note,
			OfferedItemID: offered,
			Status:        models.RequestStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.CreateRequest(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, s.done("create_request", err)
	}

	s.log.WithFields(logrus.Fields{
		"item_id":    created.ItemID,
		"request_id": created.ID,
		"user_id":    created.BuyerID,
		"type":       created.Type,
	}).Info("запрос создан")

	s.emit(TradeEvent{
		Type:       EventRequestCreated,
		ItemID:     created.ItemID,
		RequestID:  ptr(created.ID),
		ActorID:    created.BuyerID,
		Recipients: []uuid.UUID{created.SellerID},
		Timestamp:  created.CreatedAt,
	})
	return created, s.done("create_request", nil)
}

// checkOffer проверяет, что предложенный для обмена товар существует,
// принадлежит покупателю и еще доступен
func (s *Service) checkOffer(ctx context.Context, tx Tx, item *models.Item, p CreateRequestParams) error {
	if p.OfferedItemID == nil {
		return fmt.Errorf("%w: не указан товар для обмена", ErrInvalidOffer)
	}
	if *p.OfferedItemID == item.ID {
		return fmt.Errorf("%w: нельзя предложить тот же товар", ErrInvalidOffer)
	}

	offered, err := tx.GetItem(ctx, *p.OfferedItemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: товар %s не найден", ErrInvalidOffer, *p.OfferedItemID)
		}
		return err
	}
	if offered.SellerID != p.BuyerID {
		return fmt.Errorf("%w: товар %s принадлежит другому пользователю", ErrInvalidOffer, offered.ID)
	}
	if offered.Status == models.ItemStatusSold || offered.Status == models.ItemStatusRemoved {
		return fmt.Errorf("%w: товар %s в статусе %s", ErrInvalidOffer, offered.ID, offered.Status)
	}
	return nil
}

// CancelRequest отменяет запрос. Отменить может только покупатель и только пока запрос ожидает решения.
func (s *Service) CancelRequest(ctx context.Context, requestID, actingUserID uuid.UUID) (*models.Request, error) {
	current, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, s.done("cancel_request", err)
	}

	var cancelled *models.Request
	err = s.store.WithItemLock(ctx, current.ItemID, func(tx Tx) error {
		r, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if r.BuyerID != actingUserID {
			return fmt.Errorf("%w: отменить запрос может только покупатель", ErrNotAuthorized)
		}
		if r.Status != models.RequestStatusPending {
			return fmt.Errorf("%w: запрос в статусе %s", ErrInvalidState, r.Status)
		}

		now := s.now()
		r.Status = models.RequestStatusCancelled
		r.CancelledAt = &now
		r.UpdatedAt = now
		if err := tx.UpdateRequest(ctx, r); err != nil {
			return err
		}
		cancelled = r
		return nil
	})
	if err != nil {
		return nil, s.done("cancel_request", err)
	}

	s.log.WithFields(logrus.Fields{
		"item_id":    cancelled.ItemID,
		"request_id": cancelled.ID,
		"user_id":    actingUserID,
	}).Info("запрос отменен")

	s.emit(TradeEvent{
		Type:       EventRequestCancelled,
		ItemID:     cancelled.ItemID,
		RequestID:  ptr(cancelled.ID),
		ActorID:    actingUserID,
		Recipients: []uuid.UUID{cancelled.SellerID},
		Timestamp:  *cancelled.CancelledAt,
	})
	return cancelled, s.done("cancel_request", nil)
}

// GetRequest возвращает запрос участнику: покупателю или продавцу
func (s *Service) GetRequest(ctx context.Context, requestID, actingUserID uuid.UUID) (*models.Request, error) {
	r, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !r.IsParty(actingUserID) {
		return nil, ErrNotAuthorized
	}
	return r, nil
}

// ListActiveRequestsForItem возвращает ожидающие запросы по объявлению, старые первыми.
// Порядок нужен продавцу для выбора, автоматически гонки он не разрешает.
func (s *Service) ListActiveRequestsForItem(ctx context.Context, itemID uuid.UUID) ([]*models.Request, error) {
	return s.store.ListRequests(ctx, models.RequestFilter{
		ItemID: &itemID,
		Status: models.RequestStatusPending,
	})
}

// ListRequestsForUser возвращает отправленные или полученные пользователем запросы, новые первыми.
// Любая роль, кроме RequestsSent, означает полученные запросы.
func (s *Service) ListRequestsForUser(ctx context.Context, userID uuid.UUID, role RequestRole, status models.RequestStatus) ([]*models.Request, error) {
	f := models.RequestFilter{Status: status}
	if role == RequestsSent {
		f.BuyerID = &userID
	} else {
		f.SellerID = &userID
	}

	requests, err := s.store.ListRequests(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}
