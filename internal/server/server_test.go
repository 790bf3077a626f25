package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-trade-api/internal/config"
	"github.com/rajivgeraev/flippy-trade-api/internal/db/memstore"
	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/metrics"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/moderation"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

const adminTelegramID = 777

type testAPI struct {
	t     *testing.T
	app   *fiber.App
	jwt   *utils.JWTService
	store *memstore.Store
	now   time.Time
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	api := &testAPI{t: t, jwt: utils.NewJWTService("secret"), store: memstore.New(), now: time.Now()}
	reg := prometheus.NewRegistry()
	engine := lifecycle.NewService(api.store,
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(metrics.New(reg)),
		lifecycle.WithClock(func() time.Time { return api.now }),
	)

	api.app = NewApp(Deps{
		Config:     &config.Config{JWTSecret: "secret"},
		Engine:     engine,
		Moderation: moderation.NewService(api.store, engine, []int64{adminTelegramID}, log),
		Users:      api.store,
		JWTService: api.jwt,
		Gatherer:   reg,
	})
	return api
}

func (a *testAPI) token(userID uuid.UUID) string {
	token, err := a.jwt.GenerateToken(userID)
	require.NoError(a.t, err)
	return token
}

// do выполняет запрос и разбирает JSON ответа
func (a *testAPI) do(method, path string, userID *uuid.UUID, body any) (int, map[string]any) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(*userID))
	}

	resp, err := a.app.Test(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// user регистрирует пользователя с данным Telegram ID
func (a *testAPI) user(telegramID int64) uuid.UUID {
	a.t.Helper()
	u, err := a.store.UpsertTelegramUser(context.Background(), models.TelegramProfile{TelegramID: telegramID, FirstName: "Тест"})
	require.NoError(a.t, err)
	return u.ID
}

func field(t *testing.T, m map[string]any, path ...string) any {
	t.Helper()
	var cur any = m
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		require.True(t, ok, "no object at %s", p)
		cur = obj[p]
	}
	return cur
}

func TestTradeFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	seller, buyer, other := uuid.New(), uuid.New(), uuid.New()

	status, body := api.do("POST", "/api/items", &seller, map[string]any{
		"title":    "Велосипед",
		"price":    "8500",
		"modes":    map[string]bool{"sale": true},
		"quantity": 1,
	})
	require.Equal(t, http.StatusCreated, status, body)
	itemID := field(t, body, "item", "id").(string)
	require.Equal(t, "active", field(t, body, "item", "status"))

	status, body = api.do("GET", "/api/items/"+itemID, nil, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "8500", field(t, body, "item", "price"))

	status, body = api.do("POST", "/api/requests", &buyer, map[string]any{"item_id": itemID, "type": "purchase"})
	require.Equal(t, http.StatusCreated, status, body)
	requestID := field(t, body, "request", "id").(string)

	status, body = api.do("POST", "/api/requests", &other, map[string]any{"item_id": itemID, "type": "purchase"})
	require.Equal(t, http.StatusCreated, status, body)
	competingID := field(t, body, "request", "id").(string)

	status, body = api.do("GET", "/api/items/"+itemID+"/requests", &seller, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, field(t, body, "requests"), 2)

	status, _ = api.do("GET", "/api/items/"+itemID+"/requests", &buyer, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body = api.do("POST", "/api/requests/"+requestID+"/accept", &buyer, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "not_authorized", body["code"])

	status, body = api.do("POST", "/api/requests/"+requestID+"/accept", &seller, nil)
	require.Equal(t, http.StatusOK, status, body)
	txID := field(t, body, "transaction", "id").(string)
	require.Equal(t, "reserved", field(t, body, "item", "status"))

	status, body = api.do("POST", "/api/requests/"+competingID+"/accept", &seller, nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "item_already_reserved", body["code"])

	status, body = api.do("GET", "/api/transactions/"+txID, &buyer, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, field(t, body, "transaction", "handoff_expired"))
	require.NotEmpty(t, field(t, body, "transaction", "handoff_deadline"))

	status, _ = api.do("GET", "/api/transactions/"+txID, &other, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body = api.do("POST", "/api/transactions/"+txID+"/confirm", &buyer, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, body["completed"])

	status, body = api.do("POST", "/api/reviews", &buyer, map[string]any{"transaction_id": txID, "rating": 5})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "invalid_state", body["code"])

	status, body = api.do("POST", "/api/transactions/"+txID+"/confirm", &seller, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["completed"])
	require.Equal(t, "completed", field(t, body, "transaction", "status"))

	status, body = api.do("POST", "/api/reviews", &buyer, map[string]any{"transaction_id": txID, "rating": 5, "comment": "Отлично"})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = api.do("POST", "/api/reviews", &buyer, map[string]any{"transaction_id": txID, "rating": 4})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "duplicate_review", body["code"])

	status, body = api.do("POST", "/api/reviews", &seller, map[string]any{"transaction_id": txID, "rating": 9})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_rating", body["code"])

	status, body = api.do("POST", "/api/reviews", &seller, map[string]any{"transaction_id": txID, "rating": 4.5})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_rating", body["code"])

	status, body = api.do("POST", "/api/reviews", &seller, map[string]any{"transaction_id": "not-a-uuid", "rating": 4})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "bad_request", body["code"])

	status, body = api.do("GET", "/api/transactions/"+txID+"/reviews/status", &seller, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["buyer_reviewed"])
	require.Equal(t, false, body["seller_reviewed"])

	status, body = api.do("GET", "/api/users/"+seller.String()+"/reviews", nil, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, field(t, body, "reviews"), 1)
	require.Equal(t, 5.0, field(t, body, "rating", "average"))

	status, body = api.do("GET", "/api/items/"+itemID, nil, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "sold", field(t, body, "item", "status"))

	status, body = api.do("GET", "/api/transactions?status=completed", &seller, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1.0, body["total"])
}

func TestHandoffExpiryOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	seller, buyer := uuid.New(), uuid.New()

	_, body := api.do("POST", "/api/items", &seller, map[string]any{
		"title": "Шкаф", "price": 3000, "modes": map[string]bool{"sale": true},
	})
	itemID := field(t, body, "item", "id").(string)
	_, body = api.do("POST", "/api/requests", &buyer, map[string]any{"item_id": itemID, "type": "purchase"})
	requestID := field(t, body, "request", "id").(string)
	_, body = api.do("POST", "/api/requests/"+requestID+"/accept", &seller, nil)
	txID := field(t, body, "transaction", "id").(string)

	api.now = api.now.Add(7*24*time.Hour + time.Second)

	status, body := api.do("POST", "/api/transactions/"+txID+"/confirm", &buyer, nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "handoff_window_expired", body["code"])

	status, body = api.do("GET", "/api/transactions/"+txID, &seller, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, field(t, body, "transaction", "handoff_expired"))
}

func TestRequestEndpoints(t *testing.T) {
	api := newTestAPI(t)
	seller, buyer := uuid.New(), uuid.New()

	_, body := api.do("POST", "/api/items", &seller, map[string]any{
		"title": "Кресло", "price": "1200.50", "modes": map[string]bool{"sale": true},
	})
	itemID := field(t, body, "item", "id").(string)

	status, body := api.do("POST", "/api/requests", &seller, map[string]any{"item_id": itemID, "type": "purchase"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "self_deal", body["code"])

	status, body = api.do("POST", "/api/requests", &buyer, map[string]any{"item_id": itemID, "type": "gift"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_request_type", body["code"])

	status, body = api.do("POST", "/api/requests", &buyer, map[string]any{"item_id": "not-a-uuid", "type": "purchase"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "bad_request", body["code"])

	status, body = api.do("POST", "/api/requests", &buyer, map[string]any{"item_id": uuid.NewString(), "type": "purchase"})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", body["code"])

	status, body = api.do("POST", "/api/requests", &buyer, map[string]any{"item_id": itemID, "type": "purchase"})
	require.Equal(t, http.StatusCreated, status)
	requestID := field(t, body, "request", "id").(string)

	status, body = api.do("GET", "/api/requests?type=sent", &buyer, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1.0, body["total"])

	status, body = api.do("GET", "/api/requests?type=received&status=pending", &seller, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1.0, body["total"])

	status, _ = api.do("POST", "/api/requests/"+requestID+"/cancel", &seller, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body = api.do("POST", "/api/requests/"+requestID+"/cancel", &buyer, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "cancelled", field(t, body, "request", "status"))

	status, body = api.do("POST", "/api/requests/"+requestID+"/reject", &seller, nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "invalid_state", body["code"])
}

func TestItemEndpoints(t *testing.T) {
	api := newTestAPI(t)
	seller, other := uuid.New(), uuid.New()

	status, body := api.do("POST", "/api/items", &seller, map[string]any{
		"title": "Стол", "modes": map[string]bool{"sale": true},
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_item", body["code"])

	status, body = api.do("POST", "/api/items", &seller, map[string]any{
		"title": "Стол", "modes": map[string]bool{"trade_open": true},
	})
	require.Equal(t, http.StatusCreated, status)
	itemID := field(t, body, "item", "id").(string)

	status, _ = api.do("PUT", "/api/items/"+itemID, &other, map[string]any{
		"title": "Мой стол", "modes": map[string]bool{"trade_open": true},
	})
	require.Equal(t, http.StatusForbidden, status)

	status, body = api.do("PUT", "/api/items/"+itemID, &seller, map[string]any{
		"title": "Стол дубовый", "modes": map[string]bool{"trade_open": true},
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Стол дубовый", field(t, body, "item", "title"))

	status, body = api.do("GET", "/api/items/my", &seller, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1.0, body["total"])

	status, body = api.do("DELETE", "/api/items/"+itemID, &seller, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "removed", field(t, body, "item", "status"))

	status, _ = api.do("GET", "/api/items/not-a-uuid", nil, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do("POST", "/api/items", nil, map[string]any{"title": "x"})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do("GET", "/health", nil, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])

	seller := uuid.New()
	api.do("POST", "/api/items", &seller, map[string]any{"title": "Ваза", "modes": map[string]bool{"trade_open": true}})

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := api.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), `flippy_trade_transitions_total{operation="create_item"} 1`)
}

func TestChatEndpoints(t *testing.T) {
	api := newTestAPI(t)
	seller, buyer, other := uuid.New(), uuid.New(), uuid.New()

	_, body := api.do("POST", "/api/items", &seller, map[string]any{
		"title": "Гитара", "price": 12000, "modes": map[string]bool{"sale": true},
	})
	itemID := field(t, body, "item", "id").(string)
	_, body = api.do("POST", "/api/requests", &buyer, map[string]any{"item_id": itemID, "type": "purchase"})
	requestID := field(t, body, "request", "id").(string)
	path := "/api/requests/" + requestID + "/messages"

	status, body := api.do("POST", path, &buyer, map[string]any{"text": "Струны новые?"})
	require.Equal(t, http.StatusCreated, status, body)
	require.Equal(t, seller.String(), field(t, body, "message", "receiver_id"))

	status, body = api.do("POST", path, &other, map[string]any{"text": "А мне продадите?"})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "not_authorized", body["code"])

	status, body = api.do("POST", path, &seller, map[string]any{"text": "   "})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_message", body["code"])

	status, body = api.do("POST", path, &seller, map[string]any{})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "bad_request", body["code"])

	status, body = api.do("GET", path, &seller, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1.0, body["total"])

	status, _ = api.do("GET", path, &other, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, _ = api.do("GET", "/api/requests/not-a-uuid/messages", &buyer, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do("GET", path, nil, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestReportsAndAdminEndpoints(t *testing.T) {
	api := newTestAPI(t)
	admin := api.user(adminTelegramID)
	seller := api.user(1001)
	buyer := api.user(1002)

	_, body := api.do("POST", "/api/items", &seller, map[string]any{
		"title": "Айфон за 1000", "price": 1000, "modes": map[string]bool{"sale": true},
	})
	itemID := field(t, body, "item", "id").(string)

	status, body := api.do("POST", "/api/reports", &buyer, map[string]any{
		"reported_item_id": itemID, "type": "fraud", "description": "Просит предоплату",
	})
	require.Equal(t, http.StatusCreated, status, body)
	reportID := field(t, body, "report", "id").(string)
	require.Equal(t, "pending", field(t, body, "report", "status"))

	status, body = api.do("POST", "/api/reports", &buyer, map[string]any{"type": "spam", "description": "реклама"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_report", body["code"])

	status, body = api.do("POST", "/api/reports", &buyer, map[string]any{
		"reported_user_id": "not-a-uuid", "type": "spam", "description": "реклама",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "bad_request", body["code"])

	status, _ = api.do("GET", "/api/admin/reports", &buyer, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body = api.do("GET", "/api/admin/reports", &admin, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1.0, body["total"])

	status, body = api.do("POST", "/api/admin/reports/"+reportID+"/resolve", &admin, map[string]any{"status": "closed"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "bad_request", body["code"])

	status, body = api.do("POST", "/api/admin/reports/"+reportID+"/resolve", &admin, map[string]any{"status": "resolved"})
	require.Equal(t, http.StatusOK, status, body)
	require.Equal(t, "resolved", field(t, body, "report", "status"))

	status, body = api.do("POST", "/api/admin/reports/"+reportID+"/resolve", &admin, map[string]any{"status": "rejected"})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "invalid_state", body["code"])

	status, _ = api.do("DELETE", "/api/admin/items/"+itemID, &buyer, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body = api.do("DELETE", "/api/admin/items/"+itemID, &admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	require.Equal(t, "removed", field(t, body, "item", "status"))

	status, body = api.do("GET", "/api/items/"+itemID, nil, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "removed", field(t, body, "item", "status"))
}
