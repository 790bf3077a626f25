package lifecycle

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// Acceptance результат принятия запроса продавцом
type Acceptance struct {
	Request     *models.Request     `json:"request"`
	Transaction *models.Transaction `json:"transaction"`
	Item        *models.Item        `json:"item"`
}

// holdingStatuses статусы сделок, удерживающих объявление за покупателем
var holdingStatuses = []models.TransactionStatus{
	models.TransactionStatusReserved,
	models.TransactionStatusCompleted,
}

// AcceptRequest принимает запрос: бронирует объявление за покупателем и открывает сделку.
// Побеждает первый принятый запрос, остальные ожидающие запросы остаются pending,
// но принять их нельзя, пока объявление удерживается.
func (s *Service) AcceptRequest(ctx context.Context, requestID, actingSellerID uuid.UUID) (*Acceptance, error) {
	current, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, s.done("accept_request", err)
	}

	var res *Acceptance
	err = s.store.WithItemLock(ctx, current.ItemID, func(tx Tx) error {
		r, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		item, err := tx.GetItem(ctx, r.ItemID)
		if err != nil {
			return err
		}

		if item.SellerID != actingSellerID {
			return fmt.Errorf("%w: принять запрос может только продавец", ErrNotAuthorized)
		}
		if r.Status != models.RequestStatusPending {
			return fmt.Errorf("%w: запрос в статусе %s", ErrInvalidState, r.Status)
		}

		holding, err := tx.ListTransactions(ctx, models.TransactionFilter{
			ItemID:   &item.ID,
			Statuses: holdingStatuses,
		})
		if err != nil {
			return err
		}
		if len(holding) > 0 {
			return fmt.Errorf("%w: сделка %s в статусе %s", ErrItemAlreadyReserved, holding[0].ID, holding[0].Status)
		}
		if item.Status == models.ItemStatusRemoved {
			return fmt.Errorf("%w: объявление снято с публикации", ErrInvalidState)
		}
		if r.Quantity > item.Quantity {
			return fmt.Errorf("%w: запрошено %d, доступно %d", ErrInvalidQuantity, r.Quantity, item.Quantity)
		}

		now := s.now()

		t, err := s.reserveTransaction(ctx, tx, r)
		if err != nil {
			return err
		}

		r.Status = models.RequestStatusReserved
		r.UpdatedAt = now
		if err := tx.UpdateRequest(ctx, r); err != nil {
			return err
		}

		item.Status = models.ItemStatusReserved
		item.ReservedForUserID = ptr(r.BuyerID)
		item.ReservedAt = &now
		item.UpdatedAt = now
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}

		res = &Acceptance{Request: r, Transaction: t, Item: item}
		return nil
	})
	if err != nil {
		return nil, s.done("accept_request", err)
	}

	s.log.WithFields(logrus.Fields{
		"item_id":        res.Item.ID,
		"request_id":     res.Request.ID,
		"transaction_id": res.Transaction.ID,
		"user_id":        actingSellerID,
	}).Info("запрос принят, объявление забронировано")

	s.emit(TradeEvent{
		Type:          EventRequestAccepted,
		ItemID:        res.Item.ID,
		RequestID:     ptr(res.Request.ID),
		TransactionID: ptr(res.Transaction.ID),
		ActorID:       actingSellerID,
		Recipients:    []uuid.UUID{res.Request.BuyerID},
		Timestamp:     *res.Transaction.ReservedAt,
	})
	return res, s.done("accept_request", nil)
}

// reserveTransaction переводит сделку по запросу в reserved. Существующая
// pending-сделка того же покупателя по тому же объявлению переиспользуется.
func (s *Service) reserveTransaction(ctx context.Context, tx Tx, r *models.Request) (*models.Transaction, error) {
	now := s.now()

	pending, err := tx.ListTransactions(ctx, models.TransactionFilter{
		ItemID:   &r.ItemID,
		BuyerID:  &r.BuyerID,
		Statuses: []models.TransactionStatus{models.TransactionStatusPending},
	})
	if err != nil {
		return nil, err
	}

	if len(pending) > 0 {
		// условия сделки берутся из принятого запроса
		t := pending[0]
		t.RequestID = r.ID
		t.Type = r.Type
		t.Quantity = r.Quantity
		t.Note = r.Note
		t.OfferedItemID = r.OfferedItemID
		t.Status = models.TransactionStatusReserved
		t.ReservedAt = &now
		if err := tx.UpdateTransaction(ctx, t); err != nil {
			return nil, err
		}
		return t, nil
	}

	t := &models.Transaction{
		ID:            s.newID(),
		ItemID:        r.ItemID,
		RequestID:     r.ID,
		SellerID:      r.SellerID,
		BuyerID:       r.BuyerID,
		Type:          r.Type,
		Quantity:      r.Quantity,
		Note:          r.Note,
		OfferedItemID: r.OfferedItemID,
		Status:        models.TransactionStatusReserved,
		CreatedAt:     now,
		ReservedAt:    &now,
	}
	if err := tx.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RejectRequest отклоняет ожидающий запрос. Сделки не затрагиваются.
func (s *Service) RejectRequest(ctx context.Context, requestID, actingSellerID uuid.UUID) (*models.Request, error) {
	current, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, s.done("reject_request", err)
	}

	var rejected *models.Request
	err = s.store.WithItemLock(ctx, current.ItemID, func(tx Tx) error {
		r, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		item, err := tx.GetItem(ctx, r.ItemID)
		if err != nil {
			return err
		}
		if item.SellerID != actingSellerID {
			return fmt.Errorf("%w: отклонить запрос может только продавец", ErrNotAuthorized)
		}
		if r.Status != models.RequestStatusPending {
			return fmt.Errorf("%w: запрос в статусе %s", ErrInvalidState, r.Status)
		}

		r.Status = models.RequestStatusRejected
		r.UpdatedAt = s.now()
		if err := tx.UpdateRequest(ctx, r); err != nil {
			return err
		}
		rejected = r
		return nil
	})
	if err != nil {
		return nil, s.done("reject_request", err)
	}

	s.log.WithFields(logrus.Fields{
		"item_id":    rejected.ItemID,
		"request_id": rejected.ID,
		"user_id":    actingSellerID,
	}).Info("запрос отклонен")

	s.emit(TradeEvent{
		Type:       EventRequestRejected,
		ItemID:     rejected.ItemID,
		RequestID:  ptr(rejected.ID),
		ActorID:    actingSellerID,
		Recipients: []uuid.UUID{rejected.BuyerID},
		Timestamp:  rejected.UpdatedAt,
	})
	return rejected, s.done("reject_request", nil)
}

// ConfirmHandoff отмечает, что сторона сделки подтвердила передачу товара.
// Сделка завершается только после подтверждения обеими сторонами, порядок
// подтверждений не важен. Повторное подтверждение той же стороной ничего не меняет.
func (s *Service) ConfirmHandoff(ctx context.Context, transactionID, actingUserID uuid.UUID) (*models.Transaction, error) {
	current, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, s.done("confirm_handoff", err)
	}

	var (
		confirmed *models.Transaction
		changed   bool
	)
	err = s.store.WithItemLock(ctx, current.ItemID, func(tx Tx) error {
		t, err := tx.GetTransaction(ctx, transactionID)
		if err != nil {
			return err
		}

		party := t.PartyOf(actingUserID)
		if party == models.PartyNone {
			return fmt.Errorf("%w: пользователь не участвует в сделке", ErrNotAuthorized)
		}

		// повторный вызов после завершения - тоже no-op
		if t.Status == models.TransactionStatusCompleted && t.ConfirmedBy(party) {
			confirmed = t
			return nil
		}
		if t.Status != models.TransactionStatusReserved {
			return fmt.Errorf("%w: сделка в статусе %s", ErrInvalidState, t.Status)
		}
		if t.ConfirmedBy(party) {
			confirmed = t
			return nil
		}

		now := s.now()
		if t.HandoffExpired(now, s.window) {
			return fmt.Errorf("%w: бронь от %s", ErrHandoffWindowExpired, t.ReservedAt.Format("2006-01-02 15:04:05"))
		}

		t.Confirm(party, now)
		if t.BothConfirmed() {
			t.Status = models.TransactionStatusCompleted
			t.CompletedAt = &now

			item, err := tx.GetItem(ctx, t.ItemID)
			if err != nil {
				return err
			}
			item.Status = models.ItemStatusSold
			item.SoldAt = &now
			item.UpdatedAt = now
			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}
		}
		if err := tx.UpdateTransaction(ctx, t); err != nil {
			return err
		}

		confirmed = t
		changed = true
		return nil
	})
	if err != nil {
		return nil, s.done("confirm_handoff", err)
	}
	if !changed {
		return confirmed, nil
	}

	fields := logrus.Fields{
		"item_id":        confirmed.ItemID,
		"transaction_id": confirmed.ID,
		"user_id":        actingUserID,
		"party":          confirmed.PartyOf(actingUserID),
	}
	s.emit(TradeEvent{
		Type:          EventHandoffConfirmed,
		ItemID:        confirmed.ItemID,
		TransactionID: ptr(confirmed.ID),
		ActorID:       actingUserID,
		Recipients:    []uuid.UUID{confirmed.Counterparty(actingUserID)},
		Timestamp:     s.now(),
	})

	if confirmed.Status == models.TransactionStatusCompleted {
		s.log.WithFields(fields).Info("передача подтверждена обеими сторонами, сделка завершена")
		s.metrics.HandoffCompleted(confirmed.CompletedAt.Sub(*confirmed.ReservedAt).Hours())
		s.emit(TradeEvent{
			Type:          EventTransactionCompleted,
			ItemID:        confirmed.ItemID,
			TransactionID: ptr(confirmed.ID),
			ActorID:       actingUserID,
			Recipients:    []uuid.UUID{confirmed.BuyerID, confirmed.SellerID},
			Timestamp:     *confirmed.CompletedAt,
		})
	} else {
		s.log.WithFields(fields).Info("передача подтверждена одной стороной")
	}

	return confirmed, s.done("confirm_handoff", nil)
}

// GetTransaction возвращает сделку ее участнику
func (s *Service) GetTransaction(ctx context.Context, transactionID, actingUserID uuid.UUID) (*models.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t.PartyOf(actingUserID) == models.PartyNone {
		return nil, ErrNotAuthorized
	}
	return t, nil
}

// ListTransactionsForUser возвращает сделки, где пользователь покупатель или продавец, новые первыми
func (s *Service) ListTransactionsForUser(ctx context.Context, userID uuid.UUID, status models.TransactionStatus) ([]*models.Transaction, error) {
	f := models.TransactionFilter{PartyID: &userID}
	if status != "" {
		f.Statuses = []models.TransactionStatus{status}
	}

	transactions, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, nil
}
