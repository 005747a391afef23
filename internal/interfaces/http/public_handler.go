package http

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jdmorgan/trading-portal/internal/application/dto"
	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/navigation"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/feed"
)

// SettingsReader configuración pública del sitio (remota sobre valores por defecto).
type SettingsReader interface {
	Public(ctx context.Context) entity.AppConfig
}

// CatalogReader catálogo de commodities y términos comerciales.
type CatalogReader interface {
	TradeConfig() entity.TradeConfig
}

// PublicHandler contenido público: configuración, catálogo, feed, archivos,
// aviso legal y enrutador de vistas.
type PublicHandler struct {
	settings    SettingsReader
	catalog     CatalogReader
	blobs       repository.BlobStore
	channel     feed.Channel
	legalCookie string
	now         func() time.Time
}

// NewPublicHandler construye el handler público.
func NewPublicHandler(settings SettingsReader, catalog CatalogReader, blobs repository.BlobStore, channel feed.Channel, legalCookie string) *PublicHandler {
	if legalCookie == "" {
		legalCookie = "jd_morgan_legal_agreed"
	}
	return &PublicHandler{
		settings:    settings,
		catalog:     catalog,
		blobs:       blobs,
		channel:     channel,
		legalCookie: legalCookie,
		now:         time.Now,
	}
}

// Settings godoc
// @Summary      Configuración pública del sitio
// @Tags         public
// @Produce      json
// @Success      200   {object}  entity.AppConfig
// @Router       /api/settings [get]
func (h *PublicHandler) Settings(c *fiber.Ctx) error {
	return c.JSON(h.settings.Public(c.UserContext()))
}

// Catalog godoc
// @Summary      Catálogo de commodities, pagos e incoterms
// @Tags         public
// @Produce      json
// @Success      200   {object}  entity.TradeConfig
// @Router       /api/catalog [get]
func (h *PublicHandler) Catalog(c *fiber.Ctx) error {
	return c.JSON(h.catalog.TradeConfig())
}

// Feed godoc
// @Summary      Avisos y noticias del sector (RSS 2.0)
// @Tags         public
// @Produce      xml
// @Success      200
// @Router       /api/feed.xml [get]
func (h *PublicHandler) Feed(c *fiber.Ctx) error {
	out, err := feed.BuildRSS(h.channel, h.settings.Public(c.UserContext()), h.now())
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/rss+xml; charset=utf-8")
	return c.Send(out)
}

// File godoc
// @Summary      Descarga de un archivo subido
// @Tags         public
// @Param        path  path  string  true  "ruta del archivo"
// @Success      200
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /files/{path} [get]
func (h *PublicHandler) File(c *fiber.Ctx) error {
	path, err := url.PathUnescape(c.Params("*"))
	if err != nil || path == "" || strings.Contains(path, "..") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PATH", Message: "ruta inválida"})
	}
	var buf bytes.Buffer
	info, err := h.blobs.Download(c.UserContext(), path, &buf)
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "archivo no encontrado"})
	}
	if err != nil {
		return respondError(c, domain.Read(err))
	}
	if info.ContentType != "" {
		c.Set(fiber.HeaderContentType, info.ContentType)
	}
	return c.Send(buf.Bytes())
}

// LegalStatus godoc
// @Summary      Estado de aceptación del aviso legal
// @Tags         public
// @Produce      json
// @Success      200   {object}  dto.LegalStatusResponse
// @Router       /api/legal [get]
func (h *PublicHandler) LegalStatus(c *fiber.Ctx) error {
	return c.JSON(dto.LegalStatusResponse{Accepted: c.Cookies(h.legalCookie) == "true"})
}

// AcceptLegal godoc
// @Summary      Aceptar el aviso legal
// @Tags         public
// @Produce      json
// @Success      200   {object}  dto.LegalStatusResponse
// @Router       /api/legal [post]
func (h *PublicHandler) AcceptLegal(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.legalCookie,
		Value:    "true",
		Path:     "/",
		Expires:  h.now().AddDate(1, 0, 0),
		HTTPOnly: false,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.LegalStatusResponse{Accepted: true})
}

// Transition godoc
// @Summary      Siguiente vista para un evento
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransitionRequest  true  "vista actual y evento"
// @Success      200   {object}  dto.TransitionResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/navigation/transition [post]
func (h *PublicHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	next, err := navigation.Transition(navigation.View(in.Current), navigation.Event(in.Event), navigationContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TransitionResponse{Next: string(next)})
}

// navigationContext estado de sesión según el token (si lo hay).
func navigationContext(c *fiber.Ctx) navigation.Context {
	return navigation.Context{
		SignedIn: GetUserID(c) != "" && !IsAnonymous(c),
		Admin:    GetRole(c) == entity.RoleAdmin,
	}
}
