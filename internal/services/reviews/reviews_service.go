package reviews

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
	"github.com/rajivgeraev/flippy-trade-api/internal/services"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

// ReviewsService HTTP-обработчики отзывов
type ReviewsService struct {
	engine     *lifecycle.Service
	jwtService *utils.JWTService
}

// NewReviewsService создает новый экземпляр ReviewsService
func NewReviewsService(engine *lifecycle.Service, jwtService *utils.JWTService) *ReviewsService {
	return &ReviewsService{engine: engine, jwtService: jwtService}
}

type createReviewBody struct {
	TransactionID string      `json:"transaction_id" validate:"required,uuid"`
	Rating        json.Number `json:"rating"`
	Comment       string      `json:"comment" validate:"max=2000"`
}

// CreateReview оставляет отзыв о второй стороне завершенной сделки
func (s *ReviewsService) CreateReview(c fiber.Ctx) error {
	userID, ok := services.CurrentUser(c)
	if !ok {
		return services.Unauthorized(c)
	}

	var body createReviewBody
	if err := services.BindBody(c, &body); err != nil {
		return services.BadRequest(c, err.Error())
	}

	transactionID, err := uuid.Parse(body.TransactionID)
	if err != nil {
		return services.BadRequest(c, "Неверный формат ID сделки")
	}
	// Дробная или пустая оценка
	rating, err := body.Rating.Int64()
	if err != nil {
		return services.ErrorResponse(c, fmt.Errorf("%w: %q", lifecycle.ErrInvalidRating, body.Rating.String()))
	}

	review, err := s.engine.CreateReview(c.Context(), lifecycle.CreateReviewParams{
		TransactionID: transactionID,
		FromUserID:    userID,
		Rating:        int(rating),
		Comment:       body.Comment,
	})
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"review":  review,
	})
}

// GetUserReviews возвращает отзывы о пользователе и его рейтинг
func (s *ReviewsService) GetUserReviews(c fiber.Ctx) error {
	userID, ok := services.ParamID(c, "id")
	if !ok {
		return services.BadRequest(c, "Неверный формат ID пользователя")
	}

	reviews, summary, err := s.engine.ListReviewsForUser(c.Context(), userID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}
	if reviews == nil {
		reviews = []*models.Review{}
	}

	return c.JSON(fiber.Map{
		"reviews": reviews,
		"rating":  summary,
	})
}
