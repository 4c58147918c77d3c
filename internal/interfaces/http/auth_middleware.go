package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/clinsalud/fiscal-api/internal/application/dto"
	"github.com/clinsalud/fiscal-api/pkg/jwt"
)

// Locals keys para UserID y ClinicID en Fiber.
const (
	LocalUserID   = "user_id"
	LocalClinicID = "clinic_id"
)

// AuthMiddleware valida el Bearer Token JWT emitido por la app principal y
// extrae UserID y ClinicID a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, clinicID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalClinicID, clinicID)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetClinicID devuelve el ClinicID del contexto (después del middleware de auth).
func GetClinicID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalClinicID).(string)
	return s
}
