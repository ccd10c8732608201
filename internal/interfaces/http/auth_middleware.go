package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/acumulus-sync/internal/application/dto"
	"github.com/jhoicas/acumulus-sync/pkg/jwt"
)

// LocalSubject key en Fiber Locals con el emisor del webhook (claim sub).
const LocalSubject = "subject"

// AuthMiddleware valida el Bearer Token JWT y exige el scope indicado.
func AuthMiddleware(jwtSecret, issuer, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		// fasthttp recorta los espacios finales: "Bearer   " llega como "Bearer".
		if strings.EqualFold(authHeader, "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		claims, err := jwt.Parse(jwtSecret, issuer, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if scope != "" && !claims.HasScope(scope) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el token no concede el scope " + scope})
		}
		c.Locals(LocalSubject, claims.Subject)
		return c.Next()
	}
}

// GetSubject devuelve el emisor autenticado (después del middleware de auth).
func GetSubject(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalSubject).(string)
	return s
}
