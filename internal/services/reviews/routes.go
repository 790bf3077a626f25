package reviews

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-trade-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API отзывов
func (s *ReviewsService) SetupRoutes(app *fiber.App) {
	app.Post("/api/reviews", middleware.AuthMiddleware(s.jwtService), s.CreateReview)

	// Отзывы о пользователе видны всем
	app.Get("/api/users/:id/reviews", s.GetUserReviews)
}
