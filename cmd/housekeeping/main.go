// housekeeping ejecuta a mano los trabajos de limpieza del almacén y las tareas
// de operación que el panel también expone por HTTP.
//
// Uso: go run ./cmd/housekeeping <comando> [opciones]
//
//	purge-unverified [--all]   cuentas sin verificar (--all ignora la antigüedad)
//	purge-submissions          todas las intenciones y sus adjuntos
//	purge-diagnostics          documentos de prueba de conectividad
//	purge-non-admin            todos los perfiles salvo administradores
//	restore-admin <password>   crea o repara la cuenta privilegiada
//	diagnostics                escribe y lee un documento de prueba
//
// Usa la misma configuración (env / .env) que el servidor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jdmorgan/trading-portal/internal/application/auth"
	"github.com/jdmorgan/trading-portal/internal/application/housekeeping"
	"github.com/jdmorgan/trading-portal/internal/application/session"
	"github.com/jdmorgan/trading-portal/internal/application/usecase"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/documents"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/identity"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/mail"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/storage"
	"github.com/jdmorgan/trading-portal/pkg/config"
	"github.com/jdmorgan/trading-portal/pkg/logger"
)

const usage = `uso: housekeeping <comando>
  purge-unverified [--all]
  purge-submissions
  purge-diagnostics
  purge-non-admin
  restore-admin <password>
  diagnostics`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir almacén: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	if err := run(ctx, cfg, backend, log, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		backend.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, backend *storage.Backend, log *logger.Logger, cmd string, args []string) error {
	policy := entity.NewAccessPolicy(cfg.Auth.BootstrapAdminEmail)
	users := documents.NewUserRepository(backend.Docs)
	subs := documents.NewSubmissionRepository(backend.Docs)
	diags := documents.NewDiagnosticRepository(backend.Docs)

	svc := housekeeping.NewService(users, subs, diags, backend.Blobs, policy, nil, log.Component("housekeeping"),
		housekeeping.Options{
			UnverifiedTTL: cfg.Housekeeping.UnverifiedTTL,
			PageSize:      cfg.Housekeeping.PageSize,
			BatchLimit:    cfg.Store.BatchLimit,
		})
	progress := func(msg string) { fmt.Println(msg) }

	var (
		res housekeeping.Result
		err error
	)
	switch cmd {
	case "purge-unverified":
		res, err = svc.PurgeUnverified(ctx, len(args) > 0 && args[0] == "--all", progress)
	case "purge-submissions":
		res, err = svc.PurgeAllSubmissions(ctx, progress)
	case "purge-diagnostics":
		res, err = svc.PurgeDiagnostics(ctx, progress)
	case "purge-non-admin":
		res, err = svc.PurgeNonAdminUsers(ctx, progress)
	case "restore-admin":
		if len(args) == 0 {
			return fmt.Errorf("falta la contraseña")
		}
		return restoreAdmin(ctx, cfg, backend, log, policy, args[0])
	case "diagnostics":
		idp := newIdentity(cfg, backend, log)
		out, err := usecase.NewDiagnosticsUseCase(diags, subs, session.NewBootstrapper(idp, log.Component("session"))).Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("diagnóstico %s: %s (lectura %d ms)\n", out.Diagnostic.ID, out.Status, out.ReadLatency)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("comando desconocido")
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d revisados, %d coincidentes, %d eliminados\n", res.Job, res.Scanned, res.Matched, res.Deleted)
	return nil
}

func newIdentity(cfg *config.Config, backend *storage.Backend, log *logger.Logger) *identity.Provider {
	return identity.NewProvider(backend.Docs, mail.NewLogMailer(log.Component("mail")), identity.Options{
		AnonymousEnabled: cfg.Auth.AnonymousEnabled,
		Secret:           cfg.JWT.Secret,
		Issuer:           cfg.JWT.Issuer,
		VerifyURL:        cfg.App.PublicBaseURL + "/api/auth/verify",
	}, log.Component("identity"))
}

func restoreAdmin(ctx context.Context, cfg *config.Config, backend *storage.Backend, log *logger.Logger, policy entity.AccessPolicy, password string) error {
	idp := newIdentity(cfg, backend, log)
	users := documents.NewUserRepository(backend.Docs)
	uc := auth.NewAuthUseCase(idp, users, session.NewBootstrapper(idp, log.Component("session")), policy,
		auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer},
		log.Component("auth"))
	user, err := uc.RestoreAdmin(ctx, password)
	if err != nil {
		return err
	}
	fmt.Printf("cuenta de administración lista: %s (%s)\n", user.Email, user.UID)
	return nil
}
