package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jdmorgan/trading-portal/internal/application/auth"
	"github.com/jdmorgan/trading-portal/internal/application/dto"
	"github.com/jdmorgan/trading-portal/internal/application/intake"
	"github.com/jdmorgan/trading-portal/internal/application/usecase"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/navigation"
)

// HeaderSessionToken lleva el token de la sesión anónima creada durante un envío.
const HeaderSessionToken = "X-Session-Token"

// SheetGenerator genera la ficha PDF de una intención.
type SheetGenerator interface {
	Generate(ctx context.Context, s *entity.TradeSubmission) ([]byte, error)
}

// SubmissionHandler recepción pública de intenciones y consulta de back-office.
type SubmissionHandler struct {
	pipeline *intake.Pipeline
	uc       *usecase.SubmissionUseCase
	auth     *auth.AuthUseCase
	sheets   SheetGenerator
	log      zerolog.Logger
}

// NewSubmissionHandler construye el handler.
func NewSubmissionHandler(pipeline *intake.Pipeline, uc *usecase.SubmissionUseCase, authUC *auth.AuthUseCase, sheets SheetGenerator, log zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{pipeline: pipeline, uc: uc, auth: authUC, sheets: sheets, log: log}
}

// Submit godoc
// @Summary      Enviar intención de compra (LOI) o venta (SCO)
// @Description  multipart/form-data; el campo "file" es opcional. Si el envío crea una sesión
// @Description  anónima su token vuelve en el header X-Session-Token y en session_token.
// @Tags         submissions
// @Accept       multipart/form-data
// @Produce      json
// @Param        type  path      string  true   "buyer | seller"
// @Param        file  formData  file    false  "documento firmado"
// @Success      201   {object}  dto.SubmissionAcceptedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      413   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/submissions/{type} [post]
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	kind := entity.SubmissionType(c.Params("type"))
	if !kind.Valid() {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tipo de intención desconocido"})
	}
	var in dto.SubmissionForm
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	form := intake.Form{
		Type:          kind,
		Commodity:     in.Commodity,
		Quantity:      in.Quantity,
		Price:         in.Price,
		ClientName:    in.ClientName,
		ContactEmail:  in.ContactEmail,
		ContactPhone:  in.ContactPhone,
		ContactRegion: in.ContactRegion,
		SocialType:    in.SocialType,
		SocialAccount: in.SocialAccount,
		PaymentTerms:  in.PaymentTerms,
		Incoterms:     in.Incoterms,
	}

	var att *intake.Attachment
	if mf, err := c.MultipartForm(); err == nil && len(mf.File["file"]) > 0 {
		fh := mf.File["file"][0]
		f, err := fh.Open()
		if err != nil {
			return invalidBody(c)
		}
		defer f.Close()
		att = &intake.Attachment{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Body:        f,
		}
	}

	progress := func(pct int) {
		h.log.Debug().Str("type", string(kind)).Int("percent", pct).Msg("subida en curso")
	}
	out, err := h.pipeline.Submit(c.UserContext(), form, att, progress)
	if err != nil {
		return respondError(c, err)
	}

	resp := dto.SubmissionAcceptedResponse{Submission: out.Submission}
	from := navigation.ViewBuyerForm
	if kind == entity.SubmissionSeller {
		from = navigation.ViewSellerForm
	}
	if next, err := navigation.Transition(from, navigation.EventFormSubmitted, navigationContext(c)); err == nil {
		resp.NextView = string(next)
	}
	if out.Session.Issued {
		token, err := h.auth.IssueSessionToken(out.Session.Identity)
		if err != nil {
			return respondError(c, fmt.Errorf("emitir token de sesión: %w", err))
		}
		resp.SessionToken = token
		c.Set(HeaderSessionToken, token)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary      Últimas intenciones
// @Tags         submissions
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query  int  false  "máximo (default 20)"
// @Success      200   {object}  dto.SubmissionListResponse
// @Router       /api/admin/submissions [get]
func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	var q dto.LimitRequest
	_ = c.QueryParser(&q)
	q.DefaultLimit(usecase.DefaultSubmissionLimit)
	items, err := h.uc.ListRecent(c.UserContext(), q.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SubmissionListResponse{Items: items, Limit: q.Limit})
}

// Get godoc
// @Summary      Detalle de una intención
// @Tags         submissions
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200   {object}  entity.TradeSubmission
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/submissions/{id} [get]
func (h *SubmissionHandler) Get(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

// UpdateStatus godoc
// @Summary      Cambiar el estado de una intención
// @Tags         submissions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID"
// @Param        body  body  dto.UpdateStatusRequest  true  "Pending | Verified | In Review"
// @Success      200   {object}  entity.TradeSubmission
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/submissions/{id}/status [patch]
func (h *SubmissionHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	s, err := h.uc.UpdateStatus(c.UserContext(), c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

// Sheet godoc
// @Summary      Ficha PDF de una intención
// @Tags         submissions
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id  path  string  true  "ID"
// @Success      200
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/submissions/{id}/pdf [get]
func (h *SubmissionHandler) Sheet(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.sheets.Generate(c.UserContext(), s)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s_%s.pdf"`, s.Type.DocumentLabel(), s.ID))
	return c.Send(out)
}
