package admin

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-trade-api/internal/middleware"
)

// SetupRoutes настраивает маршруты администратора
func (s *AdminService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/admin", middleware.AuthMiddleware(s.jwtService))

	api.Get("/reports", s.GetReports)
	api.Post("/reports/:id/resolve", s.ResolveReport)
	api.Delete("/items/:id", s.RemoveItem)
}
