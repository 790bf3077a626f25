package admin

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/moderation"
	"github.com/rajivgeraev/flippy-trade-api/internal/services"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

// AdminService HTTP-обработчики модерации. Права проверяет moderation.Service.
type AdminService struct {
	moderation *moderation.Service
	jwtService *utils.JWTService
}

// NewAdminService создает новый экземпляр AdminService
func NewAdminService(m *moderation.Service, jwtService *utils.JWTService) *AdminService {
	return &AdminService{moderation: m, jwtService: jwtService}
}

// GetReports возвращает жалобы, по умолчанию ожидающие рассмотрения
func (s *AdminService) GetReports(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}

	reports, err := s.moderation.ListReports(c.Context(), userID, models.ReportStatus(c.Query("status")))
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	if reports == nil {
		reports = []*models.Report{}
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   len(reports),
	})
}

type resolveReportBody struct {
	Status string `json:"status" validate:"required,oneof=resolved rejected"`
}

// ResolveReport закрывает жалобу
func (s *AdminService) ResolveReport(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	reportID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID жалобы")
	}

	var body resolveReportBody
	if err := services.BindBody(c, &body); err != nil {
		return services.BadRequest(c, err.Error())
	}

	report, err := s.moderation.ResolveReport(c.Context(), reportID, userID, models.ReportStatus(body.Status))
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "report": report})
}

// RemoveItem снимает объявление с публикации
func (s *AdminService) RemoveItem(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}
	itemID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID объявления")
	}

	item, err := s.moderation.RemoveItem(c.Context(), itemID, userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "item": item})
}
