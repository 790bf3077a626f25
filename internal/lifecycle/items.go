package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// ItemParams описательные поля объявления, которые задает продавец
type ItemParams struct {
	Title           string
	Description     string
	Price           decimal.Decimal
	Modes           models.TradeModes
	TradeTargetNote string
	Quantity        int
}

func (p ItemParams) validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: пустое название", ErrInvalidItem)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: отрицательная цена", ErrInvalidItem)
	}
	if !p.Modes.Sale && !p.Modes.TradeTarget && !p.Modes.TradeOpen {
		return fmt.Errorf("%w: не выбран ни один вид сделки", ErrInvalidItem)
	}
	if p.Modes.Sale && p.Price.IsZero() {
		return fmt.Errorf("%w: для продажи нужна цена", ErrInvalidItem)
	}
	if p.Quantity < 1 {
		return fmt.Errorf("%w: количество должно быть не меньше 1", ErrInvalidQuantity)
	}
	return nil
}

func (p ItemParams) apply(item *models.Item) {
	item.Title = p.Title
	item.Description = p.Description
	item.Price = p.Price
	item.Modes = p.Modes
	item.TradeTargetNote = p.TradeTargetNote
	item.Quantity = p.Quantity
}

// CreateItem создает новое активное объявление продавца
func (s *Service) CreateItem(ctx context.Context, sellerID uuid.UUID, p ItemParams) (*models.Item, error) {
	if err := p.validate(); err != nil {
		return nil, s.done("create_item", err)
	}

	now := s.now()
	item := &models.Item{
		ID:        s.newID(),
		SellerID:  sellerID,
		Status:    models.ItemStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.apply(item)

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, s.done("create_item", err)
	}

	s.log.WithFields(logrus.Fields{"item_id": item.ID, "user_id": sellerID}).Info("объявление создано")
	return item, s.done("create_item", nil)
}

// GetItem возвращает объявление по ID
func (s *Service) GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	return s.store.GetItem(ctx, itemID)
}

// ListItemsBySeller возвращает объявления продавца
func (s *Service) ListItemsBySeller(ctx context.Context, sellerID uuid.UUID) ([]*models.Item, error) {
	return s.store.ListItemsBySeller(ctx, sellerID)
}

// UpdateItem меняет описательные поля объявления. Статус здесь не меняется никогда.
func (s *Service) UpdateItem(ctx context.Context, itemID, sellerID uuid.UUID, p ItemParams) (*models.Item, error) {
	if err := p.validate(); err != nil {
		return nil, s.done("update_item", err)
	}

	var updated *models.Item
	err := s.store.WithItemLock(ctx, itemID, func(tx Tx) error {
		item, err := tx.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.SellerID != sellerID {
			return fmt.Errorf("%w: объявление принадлежит другому пользователю", ErrNotAuthorized)
		}
		if item.Status == models.ItemStatusSold || item.Status == models.ItemStatusRemoved {
			return fmt.Errorf("%w: объявление в статусе %s", ErrInvalidState, item.Status)
		}

		p.apply(item)
		item.UpdatedAt = s.now()
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, s.done("update_item", err)
	}
	return updated, s.done("update_item", nil)
}

// RemoveItem снимает объявление с публикации (мягкое удаление).
// Забронированное или проданное объявление снять нельзя.
func (s *Service) RemoveItem(ctx context.Context, itemID, sellerID uuid.UUID) (*models.Item, error) {
	removed, err := s.removeItem(ctx, itemID, sellerID, true)
	if err != nil {
		return nil, s.done("remove_item", err)
	}

	s.log.WithFields(logrus.Fields{"item_id": itemID, "user_id": sellerID}).Info("объявление снято с публикации")
	return removed, s.done("remove_item", nil)
}

// RemoveItemByModerator снимает объявление по решению модератора. Права
// модератора проверяет вызывающий. Ограничения по статусу те же, что у
// продавца: удерживаемое сделкой объявление не снимается.
func (s *Service) RemoveItemByModerator(ctx context.Context, itemID, moderatorID uuid.UUID) (*models.Item, error) {
	removed, err := s.removeItem(ctx, itemID, moderatorID, false)
	if err != nil {
		return nil, s.done("moderate_item", err)
	}

	s.log.WithFields(logrus.Fields{
		"item_id":      itemID,
		"seller_id":    removed.SellerID,
		"moderator_id": moderatorID,
	}).Warn("объявление снято модератором")

	s.emit(TradeEvent{
		Type:       EventItemRemoved,
		ItemID:     removed.ID,
		ActorID:    moderatorID,
		Recipients: []uuid.UUID{removed.SellerID},
		Timestamp:  removed.UpdatedAt,
	})
	return removed, s.done("moderate_item", nil)
}

func (s *Service) removeItem(ctx context.Context, itemID, actorID uuid.UUID, ownerOnly bool) (*models.Item, error) {
	var removed *models.Item
	err := s.store.WithItemLock(ctx, itemID, func(tx Tx) error {
		item, err := tx.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if ownerOnly && item.SellerID != actorID {
			return fmt.Errorf("%w: объявление принадлежит другому пользователю", ErrNotAuthorized)
		}
		if item.Status != models.ItemStatusActive {
			return fmt.Errorf("%w: объявление в статусе %s", ErrInvalidState, item.Status)
		}

		item.Status = models.ItemStatusRemoved
		item.UpdatedAt = s.now()
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		removed = item
		return nil
	})
	return removed, err
}
