package reports

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-trade-api/internal/moderation"
	"github.com/rajivgeraev/flippy-trade-api/internal/services"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

// ReportsService HTTP-обработчики жалоб пользователей
type ReportsService struct {
	moderation *moderation.Service
	jwtService *utils.JWTService
}

// NewReportsService создает новый экземпляр ReportsService
func NewReportsService(m *moderation.Service, jwtService *utils.JWTService) *ReportsService {
	return &ReportsService{moderation: m, jwtService: jwtService}
}

type createReportBody struct {
	ReportedItemID string `json:"reported_item_id" validate:"omitempty,uuid"`
	ReportedUserID string `json:"reported_user_id" validate:"omitempty,uuid"`
	Type           string `json:"type" validate:"required,max=100"`
	Description    string `json:"description" validate:"required,max=2000"`
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CreateReport создает жалобу на объявление или пользователя
func (s *ReportsService) CreateReport(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}

	var body createReportBody
	if err := services.BindBody(c, &body); err != nil {
		return services.BadRequest(c, err.Error())
	}

	itemID, err := parseOptionalID(body.ReportedItemID)
	if err != nil {
		return services.BadRequest(c, "Неверный формат ID объявления")
	}
	reportedUserID, err := parseOptionalID(body.ReportedUserID)
	if err != nil {
		return services.BadRequest(c, "Неверный формат ID пользователя")
	}

	report, err := s.moderation.CreateReport(c.Context(), moderation.CreateReportParams{
		ReporterID:     userID,
		ReportedItemID: itemID,
		ReportedUserID: reportedUserID,
		Type:           body.Type,
		Description:    body.Description,
	})
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"report":  report,
	})
}
