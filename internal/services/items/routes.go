package items

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-trade-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API объявлений
func (s *ItemsService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/items")
	auth := middleware.AuthMiddleware(s.jwtService)

	// /my регистрируется раньше /:id
	api.Get("/my", auth, s.GetMyItems)
	api.Post("/", auth, s.CreateItem)

	// Публичное чтение объявления
	api.Get("/:id", s.GetItem)

	api.Put("/:id", auth, s.UpdateItem)
	api.Delete("/:id", auth, s.DeleteItem)
	api.Get("/:id/requests", auth, s.GetItemRequests)
}
