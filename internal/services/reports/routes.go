package reports

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-trade-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API жалоб
func (s *ReportsService) SetupRoutes(app *fiber.App) {
	app.Post("/api/reports", middleware.AuthMiddleware(s.jwtService), s.CreateReport)
}
