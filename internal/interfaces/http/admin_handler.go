package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jdmorgan/trading-portal/internal/application/adminsync"
	"github.com/jdmorgan/trading-portal/internal/application/dto"
)

// AdminHandler panel de administración: un workspace con drafts por administrador.
type AdminHandler struct {
	registry *adminsync.Registry
}

// NewAdminHandler construye el handler del panel.
func NewAdminHandler(registry *adminsync.Registry) *AdminHandler {
	return &AdminHandler{registry: registry}
}

// workspace abre (o recupera) el workspace del administrador del token.
func (h *AdminHandler) workspace(c *fiber.Ctx) (*adminsync.Workspace, error) {
	return h.registry.Open(c.UserContext(), GetUserID(c))
}

func confirmed(c *fiber.Ctx) bool { return c.QueryBool("confirm") }

// with ejecuta fn sobre el workspace y responde con el snapshot resultante.
func (h *AdminHandler) with(c *fiber.Ctx, fn func(w *adminsync.Workspace) error) error {
	w, err := h.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := fn(w); err != nil {
		return respondError(c, err)
	}
	return c.JSON(w.Snapshot())
}

// Open godoc
// @Summary      Abrir el panel de administración
// @Description  Carga la pestaña visual, arranca el refresco periódico y lanza la purga de cuentas no verificadas.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  adminsync.Snapshot
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/admin/workspace [post]
func (h *AdminHandler) Open(c *fiber.Ctx) error {
	return h.with(c, func(*adminsync.Workspace) error { return nil })
}

// Snapshot godoc
// @Summary      Estado del panel
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  adminsync.Snapshot
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/workspace [get]
func (h *AdminHandler) Snapshot(c *fiber.Ctx) error {
	w, ok := h.registry.Get(GetUserID(c))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "WORKSPACE_CLOSED", Message: "el panel no está abierto"})
	}
	return c.JSON(w.Snapshot())
}

// Close godoc
// @Summary      Cerrar el panel (descarta los drafts)
// @Tags         admin
// @Security     BearerAuth
// @Success      204
// @Router       /api/admin/workspace [delete]
func (h *AdminHandler) Close(c *fiber.Ctx) error {
	if err := h.registry.Close(GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func invalidTab(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "pestaña inválida", Field: "tab"})
}

// Activate godoc
// @Summary      Cambiar de pestaña
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        tab  path  string  true  "visual | members | data"
// @Success      200   {object}  adminsync.Snapshot
// @Router       /api/admin/workspace/tabs/{tab} [put]
func (h *AdminHandler) Activate(c *fiber.Ctx) error {
	tab := adminsync.Tab(c.Params("tab"))
	if !tab.Valid() {
		return invalidTab(c)
	}
	return h.with(c, func(w *adminsync.Workspace) error { return w.Activate(c.UserContext(), tab) })
}

// Refresh godoc
// @Summary      Recargar una pestaña descartando el draft
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        tab  path  string  true  "visual | members | data"
// @Success      200   {object}  adminsync.Snapshot
// @Router       /api/admin/workspace/tabs/{tab}/refresh [post]
func (h *AdminHandler) Refresh(c *fiber.Ctx) error {
	tab := adminsync.Tab(c.Params("tab"))
	if !tab.Valid() {
		return invalidTab(c)
	}
	return h.with(c, func(w *adminsync.Workspace) error { return w.Refresh(c.UserContext(), tab) })
}

// UpdateBrand godoc
// @Summary      Editar la marca (draft)
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BrandRequest  true  "logoText, logoIcon"
// @Success      200   {object}  adminsync.Snapshot
// @Router       /api/admin/workspace/brand [patch]
func (h *AdminHandler) UpdateBrand(c *fiber.Ctx) error {
	var in dto.BrandRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return h.with(c, func(w *adminsync.Workspace) error { return w.UpdateBrand(in) })
}

// SetAnnouncements godoc
// @Summary      Reemplazar avisos (draft)
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AnnouncementsRequest  true  "items"
// @Success      200   {object}  adminsync.Snapshot
// @Router       /api/admin/workspace/announcements [put]
func (h *AdminHandler) SetAnnouncements(c *fiber.Ctx) error {
	var in dto.AnnouncementsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return h.with(c, func(w *adminsync.Workspace) error { return w.SetAnnouncements(in.Items) })
}

// SetQuotes godoc
// @Summary      Reemplazar cotizaciones (draft)
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuotesRequest  true  "items"
// @Success      200   {object}  adminsync.Snapshot
// @Router       /api/admin/workspace/quotes [put]
func (h *AdminHandler) SetQuotes(c *fiber.Ctx) error {
	var in dto.QuotesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return h.with(c, func(w *adminsync.Workspace) error { return w.SetQuotes(in.Items) })
}

// SetIndustryNews godoc
// @Summary      Reemplazar noticias del sector (draft)
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IndustryNewsRequest  true  "items"
// @Success      200   {object}  adminsync.Snapshot
// @Router       /api/admin/workspace/news [put]
func (h *AdminHandler) SetIndustryNews(c *fiber.Ctx) error {
	var in dto.IndustryNewsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return h.with(c, func(w *adminsync.Workspace) error { return w.SetIndustryNews(in.Items) })
}

// AddSlide godoc
// @Summary      Agregar slide (draft)
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SlideRequest  true  "img, title, subtitle, order"
// @Success      200   {object}  adminsync.Snapshot
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/admin/workspace/slides [post]
func (h *AdminHandler) AddSlide(c *fiber.Ctx) error {
	var in dto.SlideRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return h.with(c, func(w *adminsync.Workspace) error {
		_, err := w.AddSlide(in)
		return err
	})
}

// UpdateSlide godoc
// @Summary      Editar slide (draft)
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID"
// @Param        body  body  dto.SlideRequest  true  "campos a cambiar"
// @Success      200   {object}  adminsync.Snapshot
// @Router       /api/admin/workspace/slides/{id} [patch]
func (h *AdminHandler) UpdateSlide(c *fiber.Ctx) error {
	var in dto.SlideRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return h.with(c, func(w *adminsync.Workspace) error { return w.UpdateSlide(c.Params("id"), in) })
}

// RemoveSlide godoc
// @Summary      Quitar slide (draft)
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id       path   string  true  "ID"
// @Param        confirm  query  bool    true  "confirmación explícita"
// @Success      200   {object}  adminsync.Snapshot
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/admin/workspace/slides/{id} [delete]
func (h *AdminHandler) RemoveSlide(c *fiber.Ctx) error {
	return h.with(c, func(w *adminsync.Workspace) error { return w.RemoveSlide(c.Params("id"), confirmed(c)) })
}

// UploadSlideImage godoc
// @Summary      Subir imagen de slide
// @Tags         admin
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "imagen"
// @Success      201   {object}  dto.UploadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      413   {object}  dto.ErrorResponse
// @Router       /api/admin/workspace/slides/image [post]
func (h *AdminHandler) UploadSlideImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "archivo requerido", Field: "file"})
	}
	f, err := fh.Open()
	if err != nil {
		return invalidBody(c)
	}
	defer f.Close()
	w, err := h.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	url, err := w.UploadSlideImage(c.UserContext(), fh.Filename, fh.Size, fh.Header.Get(fiber.HeaderContentType), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UploadResponse{URL: url})
}

// Publish godoc
// @Summary      Publicar el draft visual
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  dto.PublishResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/admin/workspace/publish [post]
func (h *AdminHandler) Publish(c *fiber.Ctx) error {
	w, err := h.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	state, err := w.Publish(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PublishResponse{State: string(state)})
}

// QuickAddMember godoc
// @Summary      Alta rápida de miembro pre-aprobado
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuickAddMemberRequest  true  "email, password, name, memberType"
// @Success      201   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/workspace/members [post]
func (h *AdminHandler) QuickAddMember(c *fiber.Ctx) error {
	var in dto.QuickAddMemberRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	w, err := h.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	u, err := w.QuickAddMember(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToUserResponse(u))
}

// SetMemberApproval godoc
// @Summary      Aprobar o revocar un miembro
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        uid   path  string                     true  "UID"
// @Param        body  body  dto.UpdateApprovalRequest  true  "approved"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/admin/workspace/members/{uid}/approval [patch]
func (h *AdminHandler) SetMemberApproval(c *fiber.Ctx) error {
	var in dto.UpdateApprovalRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	w, err := h.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	u, err := w.SetMemberApproval(c.UserContext(), c.Params("uid"), in.Approved)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToUserResponse(u))
}

// SetMemberType godoc
// @Summary      Cambiar el nivel de membresía
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        uid   path  string                       true  "UID"
// @Param        body  body  dto.UpdateMemberTypeRequest  true  "memberType"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/admin/workspace/members/{uid}/tier [patch]
func (h *AdminHandler) SetMemberType(c *fiber.Ctx) error {
	var in dto.UpdateMemberTypeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	w, err := h.workspace(c)
	if err != nil {
		return respondError(c, err)
	}
	u, err := w.SetMemberType(c.UserContext(), c.Params("uid"), in.MemberType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToUserResponse(u))
}

// DeleteMember godoc
// @Summary      Eliminar un miembro
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        uid      path   string  true  "UID"
// @Param        confirm  query  bool    true  "confirmación explícita"
// @Success      200   {object}  adminsync.Snapshot
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/admin/workspace/members/{uid} [delete]
func (h *AdminHandler) DeleteMember(c *fiber.Ctx) error {
	return h.with(c, func(w *adminsync.Workspace) error {
		return w.DeleteMember(c.UserContext(), c.Params("uid"), confirmed(c))
	})
}

// DeleteSubmission godoc
// @Summary      Eliminar una intención y su adjunto
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id       path   string  true  "ID"
// @Param        confirm  query  bool    true  "confirmación explícita"
// @Success      200   {object}  adminsync.Snapshot
// @Failure      428   {object}  dto.ErrorResponse
// @Router       /api/admin/workspace/submissions/{id} [delete]
func (h *AdminHandler) DeleteSubmission(c *fiber.Ctx) error {
	return h.with(c, func(w *adminsync.Workspace) error {
		return w.DeleteSubmission(c.UserContext(), c.Params("id"), confirmed(c))
	})
}
