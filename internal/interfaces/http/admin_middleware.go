package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jdmorgan/trading-portal/internal/application/dto"
)

// adminChecker es el contrato mínimo que necesita el middleware para verificar
// el perfil. Lo implementa *usecase.AccessService.
type adminChecker interface {
	IsAdmin(ctx context.Context, uid string) (bool, error)
}

// RequireAdminProfile verifica contra el perfil almacenado que el usuario del
// token sigue siendo administrador. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 403 Forbidden: el perfil ya no tiene acceso de administración.
//   - 503 Service Unavailable: fallo del almacén al consultar el perfil.
func RequireAdminProfile(checker adminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := GetUserID(c)
		if uid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}
		ok, err := checker.IsAdmin(c.UserContext(), uid)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "ADMIN_CHECK_FAILED",
				Message: "no se pudo verificar el perfil, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "ADMIN_REVOKED",
				Message: "el perfil ya no tiene acceso de administración",
			})
		}
		return c.Next()
	}
}
