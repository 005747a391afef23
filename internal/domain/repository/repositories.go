package repository

import (
	"context"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
)

// UserRepository puerto de persistencia de perfiles (colección users).
type UserRepository interface {
	Save(ctx context.Context, u *entity.User) error
	// GetByUID devuelve (nil, nil) si no existe.
	GetByUID(ctx context.Context, uid string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	// Page devuelve hasta limit perfiles con UID mayor que after, en orden de UID.
	Page(ctx context.Context, after string, limit int) ([]*entity.User, error)
	Delete(ctx context.Context, uid string) error
	// DeleteMany borra en un único batch.
	DeleteMany(ctx context.Context, uids []string) error
}

// SubmissionRepository puerto de persistencia de intenciones de compra/venta.
type SubmissionRepository interface {
	// Create escribe un documento nuevo; nunca actualiza.
	Create(ctx context.Context, s *entity.TradeSubmission) error
	// Get devuelve (nil, nil) si no existe.
	Get(ctx context.Context, id string) (*entity.TradeSubmission, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.TradeSubmission, error)
	Page(ctx context.Context, after string, limit int) ([]*entity.TradeSubmission, error)
	UpdateStatus(ctx context.Context, id string, status entity.SubmissionStatus) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
}

// SettingsRepository puerto de la configuración del sitio y sus slides.
type SettingsRepository interface {
	// GetAppConfig devuelve (nil, nil) si settings/app_config no existe.
	GetAppConfig(ctx context.Context) (*entity.AppConfig, error)
	ListSlides(ctx context.Context) ([]entity.HeroSlide, error)
	// Publish escribe config, cada slide como subdocumento y los tombstones de
	// removedSlideIDs en un único batch.
	Publish(ctx context.Context, cfg entity.AppConfig, removedSlideIDs []string) error
}

// DiagnosticRepository puerto de los documentos de diagnóstico.
type DiagnosticRepository interface {
	Create(ctx context.Context, d *entity.Diagnostic) error
	Page(ctx context.Context, after string, limit int) ([]*entity.Diagnostic, error)
	DeleteMany(ctx context.Context, ids []string) error
}

// LedgerRepository agrega las intenciones registradas por tipo.
type LedgerRepository interface {
	Summary(ctx context.Context) ([]entity.SubmissionTotals, error)
}
