package requests

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/services"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

// RequestsService HTTP-обработчики запросов на покупку и обмен
type RequestsService struct {
	engine     *lifecycle.Service
	jwtService *utils.JWTService
}

// NewRequestsService создает новый экземпляр RequestsService
func NewRequestsService(engine *lifecycle.Service, jwtService *utils.JWTService) *RequestsService {
	return &RequestsService{engine: engine, jwtService: jwtService}
}

type createRequestBody struct {
	ItemID        string `json:"item_id" validate:"required,uuid"`
	Type          string `json:"type" validate:"required"`
	Quantity      int    `json:"quantity"`
	Note          string `json:"note" validate:"max=1000"`
	OfferedItemID string `json:"offered_item_id" validate:"omitempty,uuid"`
}

// CreateRequest создает запрос покупателя
func (s *RequestsService) CreateRequest(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}

	var body createRequestBody
	if err := services.BindBody(c, &body); err != nil {
		return services.BadRequest(c, err.Error())
	}

	itemID, err := uuid.Parse(body.ItemID)
	if err != nil {
		return services.BadRequest(c, "Неверный формат ID объявления")
	}

	p := lifecycle.CreateRequestParams{
		ItemID:   itemID,
		BuyerID:  userID,
		Type:     models.RequestType(body.Type),
		Quantity: body.Quantity,
		Note:     body.Note,
	}
	if p.Quantity == 0 {
		p.Quantity = 1
	}
	if body.OfferedItemID != "" {
		offered, err := uuid.Parse(body.OfferedItemID)
		if err != nil {
			return services.BadRequest(c, "Неверный формат ID товара для обмена")
		}
		p.OfferedItemID = &offered
	}

	request, err := s.engine.CreateRequest(c.Context(), p)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"request": request,
	})
}

// GetMyRequests возвращает отправленные (type=sent) или полученные запросы
func (s *RequestsService) GetMyRequests(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}

	role := lifecycle.RequestRole(c.Query("type", string(lifecycle.RequestsReceived)))
	status := models.RequestStatus(c.Query("status"))

	requests, err := s.engine.ListRequestsForUser(c.Context(), userID, role, status)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	if requests == nil {
		requests = []*models.Request{}
	}

	return c.JSON(fiber.Map{
		"requests": requests,
		"total":    len(requests),
	})
}

// GetRequest возвращает запрос его участнику
func (s *RequestsService) GetRequest(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	requestID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID запроса")
	}

	request, err := s.engine.GetRequest(c.Context(), requestID, userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"request": request})
}

// CancelRequest отменяет ожидающий запрос покупателем
func (s *RequestsService) CancelRequest(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	requestID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID запроса")
	}

	request, err := s.engine.CancelRequest(c.Context(), requestID, userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "request": request})
}

// AcceptRequest принимает запрос продавцом и бронирует объявление
func (s *RequestsService) AcceptRequest(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	requestID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID запроса")
	}

	res, err := s.engine.AcceptRequest(c.Context(), requestID, userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"request":     res.Request,
		"transaction": res.Transaction,
		"item":        res.Item,
	})
}

// RejectRequest отклоняет ожидающий запрос продавцом
func (s *RequestsService) RejectRequest(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	requestID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID запроса")
	}

	request, err := s.engine.RejectRequest(c.Context(), requestID, userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "request": request})
}
