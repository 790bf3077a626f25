package lifecycle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-trade-api/internal/db/memstore"
	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []lifecycle.TradeEvent
}

func (r *recorder) Notify(e lifecycle.TradeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []lifecycle.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]lifecycle.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ctx    context.Context
	svc    *lifecycle.Service
	store  *memstore.Store
	clock  *fakeClock
	events *recorder
	logs   *test.Hook

	seller uuid.UUID
	buyer  uuid.UUID
	other  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		ctx:    context.Background(),
		store:  memstore.New(),
		clock:  &fakeClock{now: t0},
		events: &recorder{},
		logs:   hook,
		seller: uuid.New(),
		buyer:  uuid.New(),
		other:  uuid.New(),
	}
	f.svc = lifecycle.NewService(f.store,
		lifecycle.WithClock(f.clock.Now),
		lifecycle.WithLogger(logger),
		lifecycle.WithNotifier(f.events),
	)
	return f
}

func saleParams() lifecycle.ItemParams {
	return lifecycle.ItemParams{
		Title:    "Велосипед",
		Price:    decimal.NewFromInt(8500),
		Modes:    models.TradeModes{Sale: true},
		Quantity: 1,
	}
}

func (f *fixture) item(t *testing.T, sellerID uuid.UUID, p lifecycle.ItemParams) *models.Item {
	t.Helper()
	item, err := f.svc.CreateItem(f.ctx, sellerID, p)
	require.NoError(t, err)
	return item
}

func (f *fixture) saleItem(t *testing.T) *models.Item {
	t.Helper()
	return f.item(t, f.seller, saleParams())
}

func (f *fixture) purchase(t *testing.T, itemID, buyerID uuid.UUID) *models.Request {
	t.Helper()
	r, err := f.svc.CreateRequest(f.ctx, lifecycle.CreateRequestParams{
		ItemID:   itemID,
		BuyerID:  buyerID,
		Type:     models.RequestTypePurchase,
		Quantity: 1,
	})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	return r
}

// reserved создает объявление, запрос покупателя и принимает его
func (f *fixture) reserved(t *testing.T) *lifecycle.Acceptance {
	t.Helper()
	item := f.saleItem(t)
	r := f.purchase(t, item.ID, f.buyer)
	res, err := f.svc.AcceptRequest(f.ctx, r.ID, f.seller)
	require.NoError(t, err)
	return res
}

// completed доводит сделку до завершения
func (f *fixture) completed(t *testing.T) *models.Transaction {
	t.Helper()
	res := f.reserved(t)
	_, err := f.svc.ConfirmHandoff(f.ctx, res.Transaction.ID, f.buyer)
	require.NoError(t, err)
	tx, err := f.svc.ConfirmHandoff(f.ctx, res.Transaction.ID, f.seller)
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusCompleted, tx.Status)
	return tx
}
