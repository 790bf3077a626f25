package chat

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-trade-api/internal/middleware"
)

// SetupRoutes настраивает маршруты переписки. Чат привязан к запросу.
func (s *ChatService) SetupRoutes(app *fiber.App) {
	auth := middleware.AuthMiddleware(s.jwtService)

	app.Post("/api/requests/:id/messages", auth, s.SendMessage)
	app.Get("/api/requests/:id/messages", auth, s.GetMessages)
}
