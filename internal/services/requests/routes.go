package requests

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-trade-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API запросов
func (s *RequestsService) SetupRoutes(app *fiber.App) {
	// Все маршруты требуют авторизации
	api := app.Group("/api/requests", middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateRequest)
	api.Get("/", s.GetMyRequests)
	api.Get("/:id", s.GetRequest)
	api.Post("/:id/cancel", s.CancelRequest)
	api.Post("/:id/accept", s.AcceptRequest)
	api.Post("/:id/reject", s.RejectRequest)
}
