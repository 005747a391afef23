package http

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/jdmorgan/trading-portal/internal/application/dto"
	"github.com/jdmorgan/trading-portal/internal/application/housekeeping"
	"github.com/jdmorgan/trading-portal/internal/application/usecase"
	"github.com/jdmorgan/trading-portal/internal/domain"
)

// OpsHandler tareas de operación del back-office: limpieza, diagnóstico,
// resumen del libro de intenciones y consulta de miembros.
type OpsHandler struct {
	housekeeping *housekeeping.Service
	diagnostics  *usecase.DiagnosticsUseCase
	ledger       *usecase.LedgerUseCase
	members      *usecase.MemberUseCase
}

// NewOpsHandler construye el handler.
func NewOpsHandler(hk *housekeeping.Service, diag *usecase.DiagnosticsUseCase, ledger *usecase.LedgerUseCase, members *usecase.MemberUseCase) *OpsHandler {
	return &OpsHandler{housekeeping: hk, diagnostics: diag, ledger: ledger, members: members}
}

type job func(ctx context.Context, progress housekeeping.ProgressFunc) (housekeeping.Result, error)

// jobLog acumula la bitácora de un trabajo.
type jobLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *jobLog) add(msg string) {
	l.mu.Lock()
	l.lines = append(l.lines, msg)
	l.mu.Unlock()
}

// Housekeeping godoc
// @Summary      Ejecutar un trabajo de limpieza
// @Description  Jobs: purge-unverified (force=true ignora la antigüedad), purge-submissions,
// @Description  purge-diagnostics, purge-non-admin. Los destructivos requieren confirm=true.
// @Tags         ops
// @Security     BearerAuth
// @Produce      json
// @Param        job      path   string  true   "trabajo"
// @Param        force    query  bool    false  "purge-unverified: todas las no verificadas"
// @Param        confirm  query  bool    false  "confirmación explícita"
// @Success      200   {object}  dto.HousekeepingResponse
// @Failure      428   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/admin/housekeeping/{job} [post]
func (h *OpsHandler) Housekeeping(c *fiber.Ctx) error {
	var run job
	needsConfirm := true
	switch c.Params("job") {
	case "purge-unverified":
		force := c.QueryBool("force")
		needsConfirm = force
		run = func(ctx context.Context, p housekeeping.ProgressFunc) (housekeeping.Result, error) {
			return h.housekeeping.PurgeUnverified(ctx, force, p)
		}
	case "purge-submissions":
		run = h.housekeeping.PurgeAllSubmissions
	case "purge-diagnostics":
		run = h.housekeeping.PurgeDiagnostics
	case "purge-non-admin":
		run = h.housekeeping.PurgeNonAdminUsers
	default:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "trabajo desconocido"})
	}
	if needsConfirm && !confirmed(c) {
		return respondError(c, domain.ErrConfirmationRequired)
	}

	var log jobLog
	res, err := run(c.UserContext(), log.add)
	if err != nil {
		return respondError(c, fmt.Errorf("%s: %w", c.Params("job"), err))
	}
	return c.JSON(dto.HousekeepingResponse{
		Job:     res.Job,
		Scanned: res.Scanned,
		Matched: res.Matched,
		Deleted: res.Deleted,
		Log:     log.lines,
	})
}

// Diagnostics godoc
// @Summary      Prueba de conectividad con el almacén
// @Tags         ops
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  dto.DiagnosticResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/admin/diagnostics [post]
func (h *OpsHandler) Diagnostics(c *fiber.Ctx) error {
	out, err := h.diagnostics.Run(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Ledger godoc
// @Summary      Totales de intenciones por tipo
// @Tags         ops
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  dto.LedgerSummaryResponse
// @Router       /api/admin/ledger [get]
func (h *OpsHandler) Ledger(c *fiber.Ctx) error {
	out, err := h.ledger.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Members godoc
// @Summary      Listado de miembros
// @Tags         ops
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  dto.MemberListResponse
// @Router       /api/admin/members [get]
func (h *OpsHandler) Members(c *fiber.Ctx) error {
	list, err := h.members.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := dto.MemberListResponse{Items: make([]dto.UserResponse, 0, len(list))}
	for _, u := range list {
		out.Items = append(out.Items, dto.ToUserResponse(u))
	}
	return c.JSON(out)
}

// Member godoc
// @Summary      Detalle de un miembro
// @Tags         ops
// @Security     BearerAuth
// @Produce      json
// @Param        uid  path  string  true  "UID"
// @Success      200   {object}  dto.UserResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/members/{uid} [get]
func (h *OpsHandler) Member(c *fiber.Ctx) error {
	u, err := h.members.Get(c.UserContext(), c.Params("uid"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToUserResponse(u))
}
