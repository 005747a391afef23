// Package housekeeping agrupa los borrados masivos administrativos. Recorre
// las colecciones por páginas (cursor por ID) y borra en lotes acotados.
package housekeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jdmorgan/trading-portal/internal/application/ports"
	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// Nombres de los trabajos (etiqueta de métricas y logs).
const (
	JobPurgeUnverified  = "purge_unverified"
	JobPurgeSubmissions = "purge_submissions"
	JobPurgeDiagnostics = "purge_diagnostics"
	JobPurgeNonAdmin    = "purge_non_admin"
)

// ProgressFunc recibe mensajes de avance paso a paso.
type ProgressFunc func(msg string)

// Result resumen de una ejecución.
type Result struct {
	Job     string `json:"job"`
	Scanned int    `json:"scanned"`
	Matched int    `json:"matched"`
	Deleted int    `json:"deleted"`
}

// Options parámetros de los trabajos.
type Options struct {
	UnverifiedTTL time.Duration
	PageSize      int
	BatchLimit    int
	Now           func() time.Time
}

// Service ejecuta los trabajos de limpieza.
type Service struct {
	users       repository.UserRepository
	submissions repository.SubmissionRepository
	diagnostics repository.DiagnosticRepository
	blobs       repository.BlobStore
	policy      entity.AccessPolicy
	metrics     ports.Metrics
	log         zerolog.Logger
	opts        Options
}

// NewService construye el servicio. blobs y metrics pueden ser nil.
func NewService(
	users repository.UserRepository,
	submissions repository.SubmissionRepository,
	diagnostics repository.DiagnosticRepository,
	blobs repository.BlobStore,
	policy entity.AccessPolicy,
	metrics ports.Metrics,
	log zerolog.Logger,
	opts Options,
) *Service {
	if opts.UnverifiedTTL <= 0 {
		opts.UnverifiedTTL = time.Hour
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 200
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = 500
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Service{
		users:       users,
		submissions: submissions,
		diagnostics: diagnostics,
		blobs:       blobs,
		policy:      policy,
		metrics:     metrics,
		log:         log,
		opts:        opts,
	}
}

// PurgeUnverified borra las cuentas con isApproved=false y no privilegiadas
// cuya antigüedad supera el umbral, o todas si forceAll. Una cuenta sin fecha
// de creación se considera expirada; un perfil sin isApproved se conserva.
func (s *Service) PurgeUnverified(ctx context.Context, forceAll bool, progress ProgressFunc) (Result, error) {
	progress = orNop(progress)
	now := s.opts.Now()
	if forceAll {
		progress("[ACTION] Escaneando todas las cuentas no verificadas (modo forzado)")
	} else {
		progress(fmt.Sprintf("[AUTO] Escaneando cuentas no verificadas con más de %s", s.opts.UnverifiedTTL))
	}
	match := func(u *entity.User) bool {
		if s.policy.IsPrivileged(u) || !u.ExplicitlyUnapproved() {
			return false
		}
		return forceAll || now.Sub(u.CreatedAtOrZero()) > s.opts.UnverifiedTTL
	}
	res, err := purge(ctx, s, JobPurgeUnverified, s.users.Page, userID, match, s.users.DeleteMany, nil, progress)
	if err != nil {
		return res, err
	}
	if res.Deleted > 0 {
		progress(fmt.Sprintf("[SUCCESS] %d cuentas no verificadas eliminadas", res.Deleted))
	} else {
		progress("[INFO] No hay cuentas no verificadas para eliminar")
	}
	return res, nil
}

// PurgeAllSubmissions borra todas las intenciones y, si hay blob store, sus adjuntos.
func (s *Service) PurgeAllSubmissions(ctx context.Context, progress ProgressFunc) (Result, error) {
	progress = orNop(progress)
	progress("[SCAN] Escaneando intenciones registradas")
	all := func(*entity.TradeSubmission) bool { return true }
	found, err := count(ctx, s, s.submissions.Page, submissionID, all)
	if err != nil {
		progress("[ERROR] " + err.Error())
		return Result{Job: JobPurgeSubmissions}, domain.Read(err)
	}
	if found == 0 {
		progress("[INFO] No hay intenciones para eliminar")
		return Result{Job: JobPurgeSubmissions}, nil
	}
	progress(fmt.Sprintf("[PURGE] Encontradas %d intenciones, eliminando", found))
	res, err := purge(ctx, s, JobPurgeSubmissions, s.submissions.Page, submissionID, all, s.submissions.DeleteMany, s.removeAttachments, progress)
	if err != nil {
		return res, err
	}
	progress(fmt.Sprintf("[SUCCESS] %d intenciones eliminadas", res.Deleted))
	return res, nil
}

// PurgeDiagnostics borra todos los documentos de diagnóstico.
func (s *Service) PurgeDiagnostics(ctx context.Context, progress ProgressFunc) (Result, error) {
	progress = orNop(progress)
	progress("[SCAN] Escaneando documentos de diagnóstico")
	all := func(*entity.Diagnostic) bool { return true }
	res, err := purge(ctx, s, JobPurgeDiagnostics, s.diagnostics.Page, diagnosticID, all, s.diagnostics.DeleteMany, nil, progress)
	if err != nil {
		return res, err
	}
	if res.Deleted == 0 {
		progress("[INFO] No hay diagnósticos para eliminar")
	} else {
		progress(fmt.Sprintf("[SUCCESS] %d diagnósticos eliminados", res.Deleted))
	}
	return res, nil
}

// PurgeNonAdminUsers borra todos los perfiles que no son de administrador.
func (s *Service) PurgeNonAdminUsers(ctx context.Context, progress ProgressFunc) (Result, error) {
	progress = orNop(progress)
	progress("[SCAN] Escaneando miembros sin rol de administrador")
	match := func(u *entity.User) bool { return !s.policy.IsAdmin(u) }
	res, err := purge(ctx, s, JobPurgeNonAdmin, s.users.Page, userID, match, s.users.DeleteMany, nil, progress)
	if err != nil {
		return res, err
	}
	if res.Deleted == 0 {
		progress("[INFO] No hay miembros para eliminar")
	} else {
		progress(fmt.Sprintf("[SUCCESS] %d miembros eliminados", res.Deleted))
	}
	return res, nil
}

func (s *Service) removeAttachments(ctx context.Context, subs []*entity.TradeSubmission) {
	if s.blobs == nil {
		return
	}
	for _, sub := range subs {
		if sub.FilePath == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, sub.FilePath); err != nil {
			s.log.Warn().Err(err).Str("path", sub.FilePath).Msg("no se pudo eliminar adjunto")
		}
	}
}

// count recorre la colección por páginas y cuenta los elementos que cumplen match.
func count[T any](
	ctx context.Context,
	s *Service,
	page func(ctx context.Context, after string, limit int) ([]*T, error),
	id func(*T) string,
	match func(*T) bool,
) (int, error) {
	n := 0
	cursor := ""
	for {
		items, err := page(ctx, cursor, s.opts.PageSize)
		if err != nil {
			return n, err
		}
		for _, v := range items {
			if match(v) {
				n++
			}
		}
		if len(items) < s.opts.PageSize {
			return n, nil
		}
		cursor = id(items[len(items)-1])
	}
}

// purge recorre la colección por páginas y borra los elementos que cumplen match
// en lotes de como máximo BatchLimit. Borrar detrás del cursor no altera el recorrido.
func purge[T any](
	ctx context.Context,
	s *Service,
	job string,
	page func(ctx context.Context, after string, limit int) ([]*T, error),
	id func(*T) string,
	match func(*T) bool,
	del func(ctx context.Context, ids []string) error,
	after func(ctx context.Context, deleted []*T),
	progress ProgressFunc,
) (Result, error) {
	res := Result{Job: job}
	var pending []*T

	flush := func(n int) error {
		batch := pending[:n]
		ids := make([]string, len(batch))
		for i, v := range batch {
			ids[i] = id(v)
		}
		if err := del(ctx, ids); err != nil {
			return err
		}
		if after != nil {
			after(ctx, batch)
		}
		res.Deleted += n
		s.metrics.HousekeepingDeleted(job, n)
		progress(fmt.Sprintf("[PURGE] Lote de %d registros eliminado", n))
		pending = pending[n:]
		return nil
	}

	cursor := ""
	for {
		items, err := page(ctx, cursor, s.opts.PageSize)
		if err != nil {
			progress("[ERROR] " + err.Error())
			s.log.Error().Err(err).Str("job", job).Msg("housekeeping: error leyendo página")
			return res, domain.Read(err)
		}
		res.Scanned += len(items)
		for _, v := range items {
			if match(v) {
				res.Matched++
				pending = append(pending, v)
			}
		}
		for len(pending) >= s.opts.BatchLimit {
			if err := flush(s.opts.BatchLimit); err != nil {
				progress("[ERROR] " + err.Error())
				s.log.Error().Err(err).Str("job", job).Msg("housekeeping: error borrando lote")
				return res, domain.Write(err)
			}
		}
		if len(items) < s.opts.PageSize {
			break
		}
		cursor = id(items[len(items)-1])
	}
	if len(pending) > 0 {
		if err := flush(len(pending)); err != nil {
			progress("[ERROR] " + err.Error())
			s.log.Error().Err(err).Str("job", job).Msg("housekeeping: error borrando lote")
			return res, domain.Write(err)
		}
	}
	s.log.Info().
		Str("job", job).
		Int("scanned", res.Scanned).
		Int("deleted", res.Deleted).
		Msg("housekeeping finalizado")
	return res, nil
}

func userID(u *entity.User) string                 { return u.UID }
func submissionID(s *entity.TradeSubmission) string { return s.ID }
func diagnosticID(d *entity.Diagnostic) string      { return d.ID }

func orNop(fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return func(string) {}
	}
	return fn
}
