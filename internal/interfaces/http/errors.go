package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jdmorgan/trading-portal/internal/application/dto"
	"github.com/jdmorgan/trading-portal/internal/domain"
)

// sentinelStatus errores con código propio, evaluados antes que el Kind.
var sentinelStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrConfirmationRequired, fiber.StatusPreconditionRequired, "CONFIRMATION_REQUIRED"},
	{domain.ErrLastSlide, fiber.StatusConflict, "MIN_SLIDES"},
	{domain.ErrPublishInProgress, fiber.StatusConflict, "PUBLISH_IN_PROGRESS"},
	{domain.ErrNothingToPublish, fiber.StatusConflict, "NOTHING_TO_PUBLISH"},
	{domain.ErrInvalidTransition, fiber.StatusUnprocessableEntity, "INVALID_TRANSITION"},
	{domain.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrEmailNotVerified, fiber.StatusForbidden, "EMAIL_NOT_VERIFIED"},
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrInvalidToken, fiber.StatusBadRequest, "INVALID_TOKEN"},
	{domain.ErrNotSignedIn, fiber.StatusUnauthorized, "NOT_SIGNED_IN"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
}

var kindStatus = map[domain.Kind]struct {
	status int
	code   string
}{
	domain.KindValidation: {fiber.StatusBadRequest, "VALIDATION"},
	domain.KindAuth:       {fiber.StatusUnauthorized, "AUTH"},
	domain.KindNotFound:   {fiber.StatusNotFound, "NOT_FOUND"},
	domain.KindUpload:     {fiber.StatusBadGateway, "UPLOAD_FAILED"},
	domain.KindWrite:      {fiber.StatusBadGateway, "WRITE_FAILED"},
	domain.KindRead:       {fiber.StatusBadGateway, "READ_FAILED"},
	domain.KindConfig:     {fiber.StatusServiceUnavailable, "SERVICE_MISCONFIGURED"},
}

// respondError traduce un error de dominio a dto.ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	field := domain.FieldOf(err)
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return c.Status(s.status).JSON(dto.ErrorResponse{Code: s.code, Message: err.Error(), Field: field})
		}
	}
	if k, ok := kindStatus[domain.KindOf(err)]; ok {
		return c.Status(k.status).JSON(dto.ErrorResponse{Code: k.code, Message: err.Error(), Field: field})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
