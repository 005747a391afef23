package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jdmorgan/trading-portal/internal/application/adminsync"
	"github.com/jdmorgan/trading-portal/internal/application/auth"
	"github.com/jdmorgan/trading-portal/internal/application/housekeeping"
	"github.com/jdmorgan/trading-portal/internal/application/intake"
	"github.com/jdmorgan/trading-portal/internal/application/session"
	"github.com/jdmorgan/trading-portal/internal/application/usecase"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/catalog"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/documents"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/feed"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/identity"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/mail"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/metrics"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/pdf"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/storage"
	httpRouter "github.com/jdmorgan/trading-portal/internal/interfaces/http"
	"github.com/jdmorgan/trading-portal/pkg/config"
	"github.com/jdmorgan/trading-portal/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén")
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar almacén")
		}
	}()

	prom := metrics.NewPrometheus()
	policy := entity.NewAccessPolicy(cfg.Auth.BootstrapAdminEmail)

	var mailer repository.Mailer = mail.NewLogMailer(log.Component("mail"))
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log.Component("mail"))
	}
	idp := identity.NewProvider(backend.Docs, mailer, identity.Options{
		AnonymousEnabled: cfg.Auth.AnonymousEnabled,
		Secret:           cfg.JWT.Secret,
		Issuer:           cfg.JWT.Issuer,
		VerifyURL:        cfg.App.PublicBaseURL + "/api/auth/verify",
	}, log.Component("identity"))
	boot := session.NewBootstrapper(idp, log.Component("session"))

	userRepo := documents.NewUserRepository(backend.Docs)
	submissionRepo := documents.NewSubmissionRepository(backend.Docs)
	settingsRepo := documents.NewSettingsRepository(backend.Docs)
	diagnosticRepo := documents.NewDiagnosticRepository(backend.Docs)

	cat, err := catalog.Load(cfg.App.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar catálogo")
	}

	authUC := auth.NewAuthUseCase(idp, userRepo, boot, policy, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, log.Component("settings"))
	memberUC := usecase.NewMemberUseCase(userRepo, policy)
	submissionUC := usecase.NewSubmissionUseCase(submissionRepo, backend.Blobs, log.Component("submissions"))
	pipeline := intake.NewPipeline(submissionRepo, backend.Blobs, boot, cat, prom, log.Component("intake"),
		intake.Options{MaxFileBytes: cfg.Upload.MaxBytes})

	hk := housekeeping.NewService(userRepo, submissionRepo, diagnosticRepo, backend.Blobs, policy, prom,
		log.Component("housekeeping"), housekeeping.Options{
			UnverifiedTTL: cfg.Housekeeping.UnverifiedTTL,
			PageSize:      cfg.Housekeeping.PageSize,
			BatchLimit:    cfg.Store.BatchLimit,
		})
	var scheduler *housekeeping.Scheduler
	if cfg.Housekeeping.Interval > 0 {
		scheduler = housekeeping.NewScheduler(hk, cfg.Housekeeping.Interval, log.Component("scheduler"))
		go scheduler.Start()
	}

	registry := adminsync.NewRegistry(adminsync.Deps{
		Config:      settingsUC,
		Settings:    settingsRepo,
		Members:     memberUC,
		Creator:     authUC,
		Submissions: submissionUC,
		Blobs:       backend.Blobs,
		Metrics:     prom,
		Log:         log.Component("admin"),
	}, adminsync.Options{}, cfg.Admin.PollInterval, hk)

	if cfg.Auth.BootstrapAdminPassword != "" {
		if _, err := authUC.RestoreAdmin(ctx, cfg.Auth.BootstrapAdminPassword); err != nil {
			log.Error().Err(err).Msg("restaurar cuenta de administración")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    int(cfg.Upload.MaxBytes) + 1<<20,
		ReadTimeout:  time.Minute * 2,
		WriteTimeout: time.Minute * 2,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (si se generó docs/swagger.json)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "JD Morgan Global Trading API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": backend.Driver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(prom.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		SettingsUC:    settingsUC,
		SubmissionUC:  submissionUC,
		MemberUC:      memberUC,
		DiagnosticsUC: usecase.NewDiagnosticsUseCase(diagnosticRepo, submissionRepo, boot),
		LedgerUC:      usecase.NewLedgerUseCase(backend.Ledger),
		Access:        usecase.NewAccessService(userRepo, policy),
		Pipeline:      pipeline,
		Housekeeping:  hk,
		Workspaces:    registry,
		Catalog:       cat,
		Blobs:         backend.Blobs,
		Sheets:        pdf.NewSubmissionSheetGenerator(),
		Feed: feed.Channel{
			Title:       "JD Morgan Global Trading",
			Link:        cfg.App.PublicBaseURL,
			Description: "Market announcements and industry news",
		},
		LegalCookie: cfg.Legal.CookieName,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	shutdownWorkers(registry, scheduler, log.Zerolog())

	log.Info().Msg("aplicación detenida")
}

// shutdownWorkers detiene los pollers del panel y el planificador de limpieza.
func shutdownWorkers(registry *adminsync.Registry, scheduler *housekeeping.Scheduler, log zerolog.Logger) {
	if err := registry.CloseAll(); err != nil {
		log.Error().Err(err).Msg("cerrar workspaces de administración")
	}
	if scheduler != nil {
		scheduler.Stop()
	}
}
