package items

import (
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/services"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

// ItemsService HTTP-обработчики объявлений
type ItemsService struct {
	engine     *lifecycle.Service
	jwtService *utils.JWTService
}

// NewItemsService создает новый экземпляр ItemsService
func NewItemsService(engine *lifecycle.Service, jwtService *utils.JWTService) *ItemsService {
	return &ItemsService{engine: engine, jwtService: jwtService}
}

// itemRequest тело создания и изменения объявления
type itemRequest struct {
	Title           string            `json:"title" validate:"required,max=200"`
	Description     string            `json:"description" validate:"max=5000"`
	Price           decimal.Decimal   `json:"price"`
	Modes           models.TradeModes `json:"modes"`
	TradeTargetNote string            `json:"trade_target_note" validate:"max=500"`
	Quantity        int               `json:"quantity"`
}

func (r itemRequest) params() lifecycle.ItemParams {
	quantity := r.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return lifecycle.ItemParams{
		Title:           r.Title,
		Description:     r.Description,
		Price:           r.Price,
		Modes:           r.Modes,
		TradeTargetNote: r.TradeTargetNote,
		Quantity:        quantity,
	}
}

// CreateItem создает новое объявление
func (s *ItemsService) CreateItem(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}

	var body itemRequest
	if err := services.BindBody(c, &body); err != nil {
		return services.BadRequest(c, err.Error())
	}

	item, err := s.engine.CreateItem(c.Context(), userID, body.params())
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"item":    item,
	})
}

// GetItem возвращает объявление по ID
func (s *ItemsService) GetItem(c fiber.Ctx) error {
	itemID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID объявления")
	}

	item, err := s.engine.GetItem(c.Context(), itemID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"item": item})
}

// GetMyItems возвращает объявления текущего пользователя
func (s *ItemsService) GetMyItems(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}

	items, err := s.engine.ListItemsBySeller(c.Context(), userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	if items == nil {
		items = []*models.Item{}
	}

	return c.JSON(fiber.Map{
		"items": items,
		"total": len(items),
	})
}

// UpdateItem изменяет описательные поля объявления
func (s *ItemsService) UpdateItem(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	itemID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID объявления")
	}

	var body itemRequest
	if err := services.BindBody(c, &body); err != nil {
		return services.BadRequest(c, err.Error())
	}

	item, err := s.engine.UpdateItem(c.Context(), itemID, userID, body.params())
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "item": item})
}

// DeleteItem снимает объявление с публикации
func (s *ItemsService) DeleteItem(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	itemID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID объявления")
	}

	item, err := s.engine.RemoveItem(c.Context(), itemID, userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "item": item})
}

// GetItemRequests возвращает ожидающие запросы по объявлению, старые первыми.
// Доступно только продавцу.
func (s *ItemsService) GetItemRequests(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	itemID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID объявления")
	}

	item, err := s.engine.GetItem(c.Context(), itemID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	if item.SellerID != userID {
		return services.ErrorResponse(c, lifecycle.ErrNotAuthorized)
	}

	requests, err := s.engine.ListActiveRequestsForItem(c.Context(), itemID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	if requests == nil {
		requests = []*models.Request{}
	}
	return c.JSON(fiber.Map{"requests": requests})
}
