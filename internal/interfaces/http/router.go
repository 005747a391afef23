package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jdmorgan/trading-portal/internal/application/adminsync"
	"github.com/jdmorgan/trading-portal/internal/application/auth"
	"github.com/jdmorgan/trading-portal/internal/application/housekeeping"
	"github.com/jdmorgan/trading-portal/internal/application/intake"
	"github.com/jdmorgan/trading-portal/internal/application/usecase"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/feed"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	SettingsUC    *usecase.SettingsUseCase
	SubmissionUC  *usecase.SubmissionUseCase
	MemberUC      *usecase.MemberUseCase
	DiagnosticsUC *usecase.DiagnosticsUseCase
	LedgerUC      *usecase.LedgerUseCase
	Access        *usecase.AccessService
	Pipeline      *intake.Pipeline
	Housekeeping  *housekeeping.Service
	Workspaces    *adminsync.Registry
	Catalog       CatalogReader
	Blobs         repository.BlobStore
	Sheets        SheetGenerator
	Feed          feed.Channel
	LegalCookie   string
	JWTSecret     string
	Log           zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	public := NewPublicHandler(deps.SettingsUC, deps.Catalog, deps.Blobs, deps.Feed, deps.LegalCookie)
	app.Get("/files/*", public.File)

	api := app.Group("/api")
	optional := OptionalAuth(deps.JWTSecret)

	// Contenido público
	api.Get("/settings", public.Settings)
	api.Get("/catalog", public.Catalog)
	api.Get("/feed.xml", public.Feed)
	api.Get("/legal", public.LegalStatus)
	api.Post("/legal", public.AcceptLegal)
	api.Post("/navigation/transition", optional, public.Transition)

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/anonymous", authHandler.Anonymous)
	authGroup.Post("/verification/resend", optional, authHandler.ResendVerification)
	authGroup.Get("/verify", authHandler.Verify)

	// Intenciones (auth opcional: sin token se crea una sesión anónima si hay adjunto)
	submissionHandler := NewSubmissionHandler(deps.Pipeline, deps.SubmissionUC, deps.AuthUC, deps.Sheets, deps.Log)
	api.Post("/submissions/:type", optional, submissionHandler.Submit)

	// Administración (Bearer Token + rol admin + perfil vigente)
	admin := api.Group("/admin",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RoleAdmin),
		RequireAdminProfile(deps.Access),
	)
	admin.Post("/restore-admin", authHandler.RestoreAdmin)

	ops := NewOpsHandler(deps.Housekeeping, deps.DiagnosticsUC, deps.LedgerUC, deps.MemberUC)
	admin.Get("/members", ops.Members)
	admin.Get("/members/:uid", ops.Member)
	admin.Get("/ledger", ops.Ledger)
	admin.Post("/diagnostics", ops.Diagnostics)
	admin.Post("/housekeeping/:job", ops.Housekeeping)

	admin.Get("/submissions", submissionHandler.List)
	admin.Get("/submissions/:id", submissionHandler.Get)
	admin.Patch("/submissions/:id/status", submissionHandler.UpdateStatus)
	admin.Get("/submissions/:id/pdf", submissionHandler.Sheet)

	ws := admin.Group("/workspace")
	adminHandler := NewAdminHandler(deps.Workspaces)
	ws.Post("/", adminHandler.Open)
	ws.Get("/", adminHandler.Snapshot)
	ws.Delete("/", adminHandler.Close)
	ws.Put("/tabs/:tab", adminHandler.Activate)
	ws.Post("/tabs/:tab/refresh", adminHandler.Refresh)
	ws.Patch("/brand", adminHandler.UpdateBrand)
	ws.Put("/announcements", adminHandler.SetAnnouncements)
	ws.Put("/quotes", adminHandler.SetQuotes)
	ws.Put("/news", adminHandler.SetIndustryNews)
	ws.Post("/slides", adminHandler.AddSlide)
	ws.Post("/slides/image", adminHandler.UploadSlideImage)
	ws.Patch("/slides/:id", adminHandler.UpdateSlide)
	ws.Delete("/slides/:id", adminHandler.RemoveSlide)
	ws.Post("/publish", adminHandler.Publish)
	ws.Post("/members", adminHandler.QuickAddMember)
	ws.Patch("/members/:uid/approval", adminHandler.SetMemberApproval)
	ws.Patch("/members/:uid/tier", adminHandler.SetMemberType)
	ws.Delete("/members/:uid", adminHandler.DeleteMember)
	ws.Delete("/submissions/:id", adminHandler.DeleteSubmission)
}
