package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// tx промежуточный слой записей одной операции
type tx struct {
	s            *Store
	items        map[uuid.UUID]*models.Item
	requests     map[uuid.UUID]*models.Request
	transactions map[uuid.UUID]*models.Transaction
	reviews      map[uuid.UUID]*models.Review
}

var _ lifecycle.Tx = (*tx)(nil)

func newTx(s *Store) *tx {
	return &tx{
		s:            s,
		items:        make(map[uuid.UUID]*models.Item),
		requests:     make(map[uuid.UUID]*models.Request),
		transactions: make(map[uuid.UUID]*models.Transaction),
		reviews:      make(map[uuid.UUID]*models.Review),
	}
}

// commit применяет накопленные записи к хранилищу
func (t *tx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id, v := range t.items {
		t.s.items[id] = v
	}
	for id, v := range t.requests {
		t.s.requests[id] = v
	}
	for id, v := range t.transactions {
		t.s.transactions[id] = v
	}
	for id, v := range t.reviews {
		t.s.reviews[id] = v
	}
}

func (t *tx) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if v, ok := t.items[id]; ok {
		return v.Clone(), nil
	}
	return t.s.GetItem(ctx, id)
}

func (t *tx) GetRequest(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	if v, ok := t.requests[id]; ok {
		return v.Clone(), nil
	}
	return t.s.GetRequest(ctx, id)
}

func (t *tx) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if v, ok := t.transactions[id]; ok {
		return v.Clone(), nil
	}
	return t.s.GetTransaction(ctx, id)
}

func (t *tx) ListItemsBySeller(_ context.Context, sellerID uuid.UUID) ([]*models.Item, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	return collect(t.s.items, t.items, func(i *models.Item) bool { return i.SellerID == sellerID }, itemCreated), nil
}

func (t *tx) ListRequests(_ context.Context, f models.RequestFilter) ([]*models.Request, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	return collect(t.s.requests, t.requests, f.Match, requestCreated), nil
}

func (t *tx) ListTransactions(_ context.Context, f models.TransactionFilter) ([]*models.Transaction, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	return collect(t.s.transactions, t.transactions, f.Match, transactionCreated), nil
}

func (t *tx) ListReviews(_ context.Context, f models.ReviewFilter) ([]*models.Review, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	return collect(t.s.reviews, t.reviews, f.Match, reviewCreated), nil
}

func (t *tx) UpdateItem(ctx context.Context, item *models.Item) error {
	if _, err := t.GetItem(ctx, item.ID); err != nil {
		return err
	}
	t.items[item.ID] = item.Clone()
	return nil
}

func (t *tx) CreateRequest(_ context.Context, r *models.Request) error {
	t.requests[r.ID] = r.Clone()
	return nil
}

func (t *tx) UpdateRequest(ctx context.Context, r *models.Request) error {
	if _, err := t.GetRequest(ctx, r.ID); err != nil {
		return err
	}
	t.requests[r.ID] = r.Clone()
	return nil
}

func (t *tx) CreateTransaction(_ context.Context, tr *models.Transaction) error {
	t.transactions[tr.ID] = tr.Clone()
	return nil
}

func (t *tx) UpdateTransaction(ctx context.Context, tr *models.Transaction) error {
	if _, err := t.GetTransaction(ctx, tr.ID); err != nil {
		return err
	}
	t.transactions[tr.ID] = tr.Clone()
	return nil
}

func (t *tx) CreateReview(ctx context.Context, r *models.Review) error {
	existing, err := t.ListReviews(ctx, models.ReviewFilter{
		TransactionID: &r.TransactionID,
		FromUserID:    &r.FromUserID,
	})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: сделка %s", lifecycle.ErrDuplicateReview, r.TransactionID)
	}
	t.reviews[r.ID] = r.Clone()
	return nil
}
