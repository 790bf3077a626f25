package transactions

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/services"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

// TransactionsService HTTP-обработчики сделок и подтверждения передачи
type TransactionsService struct {
	engine     *lifecycle.Service
	jwtService *utils.JWTService
}

// NewTransactionsService создает новый экземпляр TransactionsService
func NewTransactionsService(engine *lifecycle.Service, jwtService *utils.JWTService) *TransactionsService {
	return &TransactionsService{engine: engine, jwtService: jwtService}
}

// transactionView сделка вместе со сроком подтверждения передачи
type transactionView struct {
	*models.Transaction
	HandoffDeadline *time.Time `json:"handoff_deadline,omitempty"`
	HandoffExpired  bool       `json:"handoff_expired"`
}

func (s *TransactionsService) view(t *models.Transaction) transactionView {
	window := s.engine.HandoffWindow()
	v := transactionView{
		Transaction:     t,
		HandoffDeadline: t.HandoffDeadline(window),
	}
	if t.Status == models.TransactionStatusReserved {
		v.HandoffExpired = t.HandoffExpired(s.engine.Now(), window)
	}
	return v
}

// GetMyTransactions возвращает сделки текущего пользователя, новые первыми
func (s *TransactionsService) GetMyTransactions(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}

	status := models.TransactionStatus(c.Query("status"))
	transactions, err := s.engine.ListTransactionsForUser(c.Context(), userID, status)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	views := make([]transactionView, 0, len(transactions))
	for _, t := range transactions {
		views = append(views, s.view(t))
	}

	return c.JSON(fiber.Map{
		"transactions": views,
		"total":        len(views),
	})
}

// GetTransaction возвращает сделку ее участнику
func (s *TransactionsService) GetTransaction(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	transactionID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID сделки")
	}

	t, err := s.engine.GetTransaction(c.Context(), transactionID, userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"transaction": s.view(t)})
}

// ConfirmHandoff подтверждает передачу товара стороной сделки
func (s *TransactionsService) ConfirmHandoff(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	transactionID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID сделки")
	}

	t, err := s.engine.ConfirmHandoff(c.Context(), transactionID, userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"completed":   t.Status == models.TransactionStatusCompleted,
		"transaction": s.view(t),
	})
}

// GetReviewStatus показывает, кто из сторон уже оставил отзыв. Доступно участникам.
func (s *TransactionsService) GetReviewStatus(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	transactionID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID сделки")
	}

	if _, err := s.engine.GetTransaction(c.Context(), transactionID, userID); err != nil {
		return services.ErrorResponse(c, err)
	}

	status, err := s.engine.GetReviewStatus(c.Context(), transactionID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(status)
}
