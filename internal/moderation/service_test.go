package moderation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-trade-api/internal/db/memstore"
	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/moderation"
)

const adminTelegramID = 777

type fixture struct {
	ctx    context.Context
	store  *memstore.Store
	engine *lifecycle.Service
	svc    *moderation.Service
	now    time.Time

	admin  *models.User
	seller *models.User
	buyer  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger, _ := test.NewNullLogger()
	f := &fixture{
		ctx:   context.Background(),
		store: memstore.New(),
		now:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.engine = lifecycle.NewService(f.store,
		lifecycle.WithClock(func() time.Time { return f.now }),
		lifecycle.WithLogger(logger),
	)
	f.svc = moderation.NewService(f.store, f.engine, []int64{adminTelegramID}, logger)

	f.admin = f.user(t, adminTelegramID)
	f.seller = f.user(t, 1001)
	f.buyer = f.user(t, 1002)
	return f
}

func (f *fixture) user(t *testing.T, telegramID int64) *models.User {
	t.Helper()
	u, err := f.store.UpsertTelegramUser(f.ctx, models.TelegramProfile{TelegramID: telegramID, FirstName: "Тест"})
	require.NoError(t, err)
	return u
}

func (f *fixture) item(t *testing.T) *models.Item {
	t.Helper()
	item, err := f.engine.CreateItem(f.ctx, f.seller.ID, lifecycle.ItemParams{
		Title:    "Кресло",
		Price:    decimal.NewFromInt(3000),
		Modes:    models.TradeModes{Sale: true},
		Quantity: 1,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) report(t *testing.T, itemID uuid.UUID) *models.Report {
	t.Helper()
	r, err := f.svc.CreateReport(f.ctx, moderation.CreateReportParams{
		ReporterID:     f.buyer.ID,
		ReportedItemID: &itemID,
		Type:           "fraud",
		Description:    "Просит предоплату",
	})
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	return r
}

func TestCreateReport(t *testing.T) {
	f := newFixture(t)
	item := f.item(t)

	r := f.report(t, item.ID)
	require.Equal(t, models.ReportStatusPending, r.Status)
	require.Equal(t, f.buyer.ID, r.ReporterID)
	require.Equal(t, item.ID, *r.ReportedItemID)
	require.Nil(t, r.ReportedUserID)

	stored, err := f.store.GetReport(f.ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, r.Description, stored.Description)
}

func TestCreateReportValidation(t *testing.T) {
	f := newFixture(t)
	item := f.item(t)
	missing := uuid.New()

	tests := []struct {
		name string
		p    moderation.CreateReportParams
		want error
	}{
		{"no target", moderation.CreateReportParams{Type: "spam", Description: "реклама"}, lifecycle.ErrInvalidReport},
		{"blank type", moderation.CreateReportParams{ReportedItemID: &item.ID, Type: " ", Description: "реклама"}, lifecycle.ErrInvalidReport},
		{"blank description", moderation.CreateReportParams{ReportedItemID: &item.ID, Type: "spam"}, lifecycle.ErrInvalidReport},
		{"self report", moderation.CreateReportParams{ReportedUserID: &f.buyer.ID, Type: "spam", Description: "я"}, lifecycle.ErrInvalidReport},
		{"unknown item", moderation.CreateReportParams{ReportedItemID: &missing, Type: "spam", Description: "реклама"}, lifecycle.ErrNotFound},
		{"unknown user", moderation.CreateReportParams{ReportedUserID: &missing, Type: "spam", Description: "реклама"}, lifecycle.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.p.ReporterID = f.buyer.ID
			_, err := f.svc.CreateReport(f.ctx, tt.p)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAdminOnlyOperations(t *testing.T) {
	f := newFixture(t)
	item := f.item(t)
	r := f.report(t, item.ID)

	for _, userID := range []uuid.UUID{f.buyer.ID, uuid.New()} {
		_, err := f.svc.ListReports(f.ctx, userID, "")
		require.ErrorIs(t, err, lifecycle.ErrNotAuthorized)

		_, err = f.svc.ResolveReport(f.ctx, r.ID, userID, models.ReportStatusResolved)
		require.ErrorIs(t, err, lifecycle.ErrNotAuthorized)

		_, err = f.svc.RemoveItem(f.ctx, item.ID, userID)
		require.ErrorIs(t, err, lifecycle.ErrNotAuthorized)
	}

	ok, err := f.svc.IsAdmin(f.ctx, f.admin.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestListReportsNewestFirst(t *testing.T) {
	f := newFixture(t)
	item := f.item(t)
	first := f.report(t, item.ID)
	second := f.report(t, item.ID)

	reports, err := f.svc.ListReports(f.ctx, f.admin.ID, "")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.Equal(t, second.ID, reports[0].ID)
	require.Equal(t, first.ID, reports[1].ID)

	_, err = f.svc.ResolveReport(f.ctx, first.ID, f.admin.ID, models.ReportStatusRejected)
	require.NoError(t, err)

	pending, err := f.svc.ListReports(f.ctx, f.admin.ID, models.ReportStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	rejected, err := f.svc.ListReports(f.ctx, f.admin.ID, models.ReportStatusRejected)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	require.Equal(t, first.ID, rejected[0].ID)
}

func TestResolveReport(t *testing.T) {
	f := newFixture(t)
	item := f.item(t)
	r := f.report(t, item.ID)

	_, err := f.svc.ResolveReport(f.ctx, r.ID, f.admin.ID, models.ReportStatusPending)
	require.ErrorIs(t, err, lifecycle.ErrInvalidReport)

	resolved, err := f.svc.ResolveReport(f.ctx, r.ID, f.admin.ID, models.ReportStatusResolved)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusResolved, resolved.Status)
	require.Equal(t, f.admin.ID, *resolved.ResolvedBy)
	require.Equal(t, f.now, *resolved.ResolvedAt)

	_, err = f.svc.ResolveReport(f.ctx, r.ID, f.admin.ID, models.ReportStatusRejected)
	require.ErrorIs(t, err, lifecycle.ErrInvalidState)

	_, err = f.svc.ResolveReport(f.ctx, uuid.New(), f.admin.ID, models.ReportStatusResolved)
	require.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestRemoveItemByAdmin(t *testing.T) {
	f := newFixture(t)
	item := f.item(t)

	removed, err := f.svc.RemoveItem(f.ctx, item.ID, f.admin.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemStatusRemoved, removed.Status)

	got, err := f.engine.GetItem(f.ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemStatusRemoved, got.Status)

	_, err = f.svc.RemoveItem(f.ctx, item.ID, f.admin.ID)
	require.ErrorIs(t, err, lifecycle.ErrInvalidState)
}
