package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-trade-api/internal/db/memstore"
	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

func newTestServer(t *testing.T) (*Manager, *utils.JWTService, string) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	manager := NewManager(log)
	jwtService := utils.NewJWTService("secret")
	srv := httptest.NewServer(NewHandler(manager, jwtService, nil))
	t.Cleanup(func() {
		manager.Shutdown()
		srv.Close()
	})

	return manager, jwtService, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *gorilla.Conn {
	t.Helper()

	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNotifyDeliversToRecipientsOnly(t *testing.T) {
	manager, jwtService, url := newTestServer(t)

	buyer, seller, stranger := uuid.New(), uuid.New(), uuid.New()
	conns := map[uuid.UUID]*gorilla.Conn{}
	for _, id := range []uuid.UUID{buyer, seller, stranger} {
		token, err := jwtService.GenerateToken(id)
		require.NoError(t, err)
		conns[id] = dial(t, url+"?token="+token)
	}
	for _, id := range []uuid.UUID{buyer, seller, stranger} {
		id := id
		require.Eventually(t, func() bool { return manager.Connected(id) }, time.Second, 10*time.Millisecond)
	}

	itemID, txID := uuid.New(), uuid.New()
	manager.Notify(lifecycle.TradeEvent{
		Type:          lifecycle.EventTransactionCompleted,
		ItemID:        itemID,
		TransactionID: &txID,
		ActorID:       buyer,
		Recipients:    []uuid.UUID{buyer, seller},
		Timestamp:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})

	for _, id := range []uuid.UUID{buyer, seller} {
		conn := conns[id]
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(msg, &got))
		require.Equal(t, "transaction_completed", got["type"])
		require.Equal(t, itemID.String(), got["item_id"])
		require.Equal(t, txID.String(), got["transaction_id"])
		require.NotContains(t, got, "Recipients")
	}

	conn := conns[stranger]
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestMessagePushedToReceiver(t *testing.T) {
	manager, jwtService, url := newTestServer(t)
	ctx := context.Background()

	engine := lifecycle.NewService(memstore.New(), lifecycle.WithNotifier(manager))
	seller, buyer := uuid.New(), uuid.New()

	item, err := engine.CreateItem(ctx, seller, lifecycle.ItemParams{
		Title:    "Самокат",
		Price:    decimal.NewFromInt(4000),
		Modes:    models.TradeModes{Sale: true},
		Quantity: 1,
	})
	require.NoError(t, err)
	r, err := engine.CreateRequest(ctx, lifecycle.CreateRequestParams{
		ItemID:   item.ID,
		BuyerID:  buyer,
		Type:     models.RequestTypePurchase,
		Quantity: 1,
	})
	require.NoError(t, err)

	token, err := jwtService.GenerateToken(buyer)
	require.NoError(t, err)
	conn := dial(t, url+"?token="+token)
	require.Eventually(t, func() bool { return manager.Connected(buyer) }, time.Second, 10*time.Millisecond)

	_, err = engine.SendMessage(ctx, r.ID, seller, "Можно сегодня")
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type    string          `json:"type"`
		Message *models.Message `json:"message"`
	}
	require.NoError(t, json.Unmarshal(msg, &got))
	require.Equal(t, "message_sent", got.Type)
	require.NotNil(t, got.Message)
	require.Equal(t, "Можно сегодня", got.Message.Text)
	require.Equal(t, buyer, got.Message.ReceiverID)
}

func TestHandlerRejectsInvalidToken(t *testing.T) {
	_, _, url := newTestServer(t)

	_, resp, err := gorilla.DefaultDialer.Dial(url+"?token=bad", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRemoveClientOnDisconnect(t *testing.T) {
	manager, jwtService, url := newTestServer(t)

	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)

	conn := dial(t, url+"?token="+token)
	require.Eventually(t, func() bool { return manager.Connected(userID) }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return !manager.Connected(userID) }, 2*time.Second, 10*time.Millisecond)
}
