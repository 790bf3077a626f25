// Package server собирает HTTP API сервиса сделок
package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rajivgeraev/flippy-trade-api/internal/config"
	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/moderation"
	"github.com/rajivgeraev/flippy-trade-api/internal/services/admin"
	"github.com/rajivgeraev/flippy-trade-api/internal/services/auth"
	"github.com/rajivgeraev/flippy-trade-api/internal/services/chat"
	"github.com/rajivgeraev/flippy-trade-api/internal/services/items"
	"github.com/rajivgeraev/flippy-trade-api/internal/services/reports"
	"github.com/rajivgeraev/flippy-trade-api/internal/services/requests"
	"github.com/rajivgeraev/flippy-trade-api/internal/services/reviews"
	"github.com/rajivgeraev/flippy-trade-api/internal/services/transactions"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

// Deps зависимости HTTP API
type Deps struct {
	Config     *config.Config
	Engine     *lifecycle.Service
	Moderation *moderation.Service
	Users      auth.UserStore
	JWTService *utils.JWTService
	Gatherer   prometheus.Gatherer
	// AccessLog включает журнал запросов Fiber
	AccessLog bool
}

// NewApp создаёт экземпляр Fiber со всеми маршрутами
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Flippy Trade API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	if d.Config.RateLimit.Max > 0 {
		app.Use("/api", limiter.New(limiter.Config{
			Max:        d.Config.RateLimit.Max,
			Expiration: d.Config.RateLimit.Window,
		}))
	}

	// Регистрируем маршруты
	auth.NewAuthService(d.Config, d.Users, d.JWTService).SetupRoutes(app)
	items.NewItemsService(d.Engine, d.JWTService).SetupRoutes(app)
	requests.NewRequestsService(d.Engine, d.JWTService).SetupRoutes(app)
	transactions.NewTransactionsService(d.Engine, d.JWTService).SetupRoutes(app)
	reviews.NewReviewsService(d.Engine, d.JWTService).SetupRoutes(app)
	chat.NewChatService(d.Engine, d.JWTService).SetupRoutes(app)
	reports.NewReportsService(d.Moderation, d.JWTService).SetupRoutes(app)
	admin.NewAdminService(d.Moderation, d.JWTService).SetupRoutes(app)

	return app
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
