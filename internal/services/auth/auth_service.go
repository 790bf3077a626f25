package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/rajivgeraev/flippy-trade-api/internal/config"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/services"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

// initDataTTL сколько живут данные запуска Mini App
const initDataTTL = 24 * time.Hour

// UserStore хранилище пользователей
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpsertTelegramUser(ctx context.Context, p models.TelegramProfile) (*models.User, error)
}

// AuthService структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	users      UserStore
	jwtService *utils.JWTService
	// validate проверяет initData, в тестах подменяется
	validate func(initData string) error
}

// NewAuthService конструктор AuthService
func NewAuthService(cfg *config.Config, users UserStore, jwtService *utils.JWTService) *AuthService {
	return &AuthService{
		cfg:        cfg,
		users:      users,
		jwtService: jwtService,
		validate: func(initData string) error {
			return initdata.Validate(initData, cfg.TelegramBotToken, initDataTTL)
		},
	}
}

// TelegramAuthHandler проверяет initData, создает или обновляет пользователя и выдает JWT
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data" validate:"required"`
	}

	if err := services.BindBody(c, &payload); err != nil {
		return services.BadRequest(c, err.Error())
	}

	// Проверяем initData
	if err := s.validate(payload.InitData); err != nil {
		logrus.WithError(err).Warn("Неверные данные Telegram")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Telegram data"})
	}

	// Парсим данные
	data, err := initdata.Parse(payload.InitData)
	if err != nil || data.User.ID == 0 {
		return services.BadRequest(c, "Failed to parse initData")
	}

	user, err := s.users.UpsertTelegramUser(c.Context(), models.TelegramProfile{
		TelegramID: data.User.ID,
		Username:   data.User.Username,
		FirstName:  data.User.FirstName,
		LastName:   data.User.LastName,
		PhotoURL:   data.User.PhotoURL,
	})
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	// Генерируем JWT
	jwtToken, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate JWT"})
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "telegram_id": user.TelegramID}).Info("Вход через Telegram")

	return c.JSON(fiber.Map{
		"token": jwtToken,
		"user":  user,
	})
}

// ProfileHandler возвращает профиль текущего пользователя
func (s *AuthService) ProfileHandler(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}

	user, err := s.users.GetUser(c.Context(), userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"user":      user,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
