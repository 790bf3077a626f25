package transactions

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-trade-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API сделок
func (s *TransactionsService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/transactions", middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.GetMyTransactions)
	api.Get("/:id", s.GetTransaction)
	api.Post("/:id/confirm", s.ConfirmHandoff)
	api.Get("/:id/reviews/status", s.GetReviewStatus)
}
