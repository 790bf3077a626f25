// Package services общие помощники HTTP-обработчиков
package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/middleware"
)

// Validate общий валидатор тел запросов
var Validate = validator.New()

var statusByKind = map[string]int{
	"not_found":              fiber.StatusNotFound,
	"not_authorized":         fiber.StatusForbidden,
	"invalid_state":          fiber.StatusConflict,
	"item_already_reserved":  fiber.StatusConflict,
	"handoff_window_expired": fiber.StatusConflict,
	"duplicate_review":       fiber.StatusConflict,
	"self_deal":              fiber.StatusBadRequest,
	"invalid_offer":          fiber.StatusBadRequest,
	"invalid_rating":         fiber.StatusBadRequest,
	"invalid_quantity":       fiber.StatusBadRequest,
	"invalid_request_type":   fiber.StatusBadRequest,
	"trade_mode_disabled":    fiber.StatusBadRequest,
	"invalid_item":           fiber.StatusBadRequest,
	"invalid_message":        fiber.StatusBadRequest,
	"invalid_report":         fiber.StatusBadRequest,
}

// ErrorResponse отвечает ошибкой движка сделок с HTTP-статусом по ее виду.
// Неизвестные ошибки логируются и отдаются как 500 без подробностей.
func ErrorResponse(c fiber.Ctx, err error) error {
	kind := lifecycle.Kind(err)
	status, ok := statusByKind[kind]
	if !ok {
		logrus.WithError(err).WithField("path", c.Path()).Error("Внутренняя ошибка")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Внутренняя ошибка сервера",
			"code":  "internal",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
		"code":  kind,
	})
}

// BadRequest ответ 400 с сообщением
func BadRequest(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message, "code": "bad_request"})
}

// BindBody разбирает JSON тела и проверяет его тегами validate
func BindBody(c fiber.Ctx, dst any) error {
	if err := c.Bind().Body(dst); err != nil {
		return errors.New("неверный формат данных")
	}
	if err := Validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New("некорректное поле " + verrs[0].Field() + ": " + verrs[0].Tag())
		}
		return err
	}
	return nil
}

// CurrentUser ID пользователя из JWT
func CurrentUser(c fiber.Ctx) (uuid.UUID, bool) {
	return middleware.UserID(c)
}

// Unauthorized ответ 401
func Unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
}

// ParamID разбирает UUID из параметра маршрута
func ParamID(c fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}
