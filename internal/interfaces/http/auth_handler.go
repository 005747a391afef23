package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jdmorgan/trading-portal/internal/application/auth"
	"github.com/jdmorgan/trading-portal/internal/application/dto"
)

// AuthHandler maneja registro, login, sesiones anónimas y verificación.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar miembro
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "email, password, name"
// @Success      201   {object}  dto.RegisterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Email == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y password son requeridos"})
	}
	out, err := h.uc.SignIn(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Anonymous godoc
// @Summary      Sesión de invitado
// @Tags         auth
// @Produce      json
// @Success      200   {object}  dto.SessionResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/auth/anonymous [post]
func (h *AuthHandler) Anonymous(c *fiber.Ctx) error {
	out, err := h.uc.SignInAnonymously(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ResendVerification godoc
// @Summary      Reenviar correo de verificación
// @Description  Usa la sesión del token si existe; si no, las credenciales del cuerpo.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResendVerificationRequest  false  "email, password"
// @Success      200   {object}  dto.MessageResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/verification/resend [post]
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var in dto.ResendVerificationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	if err := h.uc.ResendVerification(c.UserContext(), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "correo de verificación enviado"})
}

// Verify godoc
// @Summary      Confirmar email
// @Tags         auth
// @Produce      json
// @Param        token  query  string  true  "token del enlace de verificación"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/verify [get]
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token requerido", Field: "token"})
	}
	user, err := h.uc.ConfirmEmail(c.UserContext(), token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// RestoreAdmin godoc
// @Summary      Restaurar la cuenta de administración
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestoreAdminRequest  true  "password"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/admin/restore-admin [post]
func (h *AuthHandler) RestoreAdmin(c *fiber.Ctx) error {
	var in dto.RestoreAdminRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if len(in.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "password debe tener al menos 6 caracteres", Field: "password"})
	}
	user, err := h.uc.RestoreAdmin(c.UserContext(), in.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToUserResponse(user))
}
