package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

func TestAuthMiddleware(t *testing.T) {
	jwtService := utils.NewJWTService("secret")
	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", AuthMiddleware(jwtService), func(c fiber.Ctx) error {
		id, ok := UserID(c)
		require.True(t, ok)
		return c.SendString(id.String())
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Token " + token, fiber.StatusUnauthorized},
		{"invalid token", "Bearer garbage", fiber.StatusUnauthorized},
		{"valid token", "Bearer " + token, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tt.status, resp.StatusCode)

			if tt.status == fiber.StatusOK {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				require.Equal(t, userID.String(), string(body))
			}
		})
	}
}
