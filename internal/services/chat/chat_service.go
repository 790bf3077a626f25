package chat

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/services"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

// ChatService HTTP-обработчики переписки по запросу
type ChatService struct {
	engine     *lifecycle.Service
	jwtService *utils.JWTService
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(engine *lifecycle.Service, jwtService *utils.JWTService) *ChatService {
	return &ChatService{engine: engine, jwtService: jwtService}
}

type sendMessageBody struct {
	Text string `json:"text" validate:"required"`
}

// SendMessage отправляет сообщение второй стороне запроса
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	requestID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID запроса")
	}

	var body sendMessageBody
	if err := services.BindBody(c, &body); err != nil {
		return services.BadRequest(c, err.Error())
	}

	message, err := s.engine.SendMessage(c.Context(), requestID, userID, body.Text)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// GetMessages возвращает переписку по запросу
func (s *ChatService) GetMessages(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	requestID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID запроса")
	}

	messages, err := s.engine.ListMessages(c.Context(), requestID, userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"total":    len(messages),
	})
}
