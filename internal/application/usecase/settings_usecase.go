package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// SettingsUseCase lectura de la configuración del sitio.
type SettingsUseCase struct {
	repo repository.SettingsRepository
	log  zerolog.Logger
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(repo repository.SettingsRepository, log zerolog.Logger) *SettingsUseCase {
	return &SettingsUseCase{repo: repo, log: log}
}

// Load devuelve la configuración remota mezclada sobre los valores por defecto.
// Los fallos de lectura se devuelven como domain.KindRead.
func (uc *SettingsUseCase) Load(ctx context.Context) (entity.AppConfig, error) {
	remote, err := uc.repo.GetAppConfig(ctx)
	if err != nil {
		return entity.AppConfig{}, domain.Read(err)
	}
	cfg := entity.DefaultAppConfig()
	if remote != nil {
		cfg = mergeAppConfig(cfg, *remote)
	}
	if remote == nil || len(remote.HeroSlides) == 0 {
		slides, err := uc.repo.ListSlides(ctx)
		if err != nil {
			return entity.AppConfig{}, domain.Read(err)
		}
		if len(slides) > 0 {
			cfg.HeroSlides = slides
		}
	}
	cfg.SortSlides()
	return cfg, nil
}

// Public igual que Load, pero ante un fallo registra el error y devuelve los valores por defecto.
func (uc *SettingsUseCase) Public(ctx context.Context) entity.AppConfig {
	cfg, err := uc.Load(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("lectura de settings fallida, usando configuración inicial")
		return entity.DefaultAppConfig()
	}
	return cfg
}

// mergeAppConfig sobrescribe los valores por defecto con los campos presentes en remote.
func mergeAppConfig(def, remote entity.AppConfig) entity.AppConfig {
	out := def
	if remote.LogoText != "" {
		out.LogoText = remote.LogoText
	}
	if remote.LogoIcon != "" {
		out.LogoIcon = remote.LogoIcon
	}
	if len(remote.HeroSlides) > 0 {
		out.HeroSlides = remote.HeroSlides
	}
	if remote.Announcements != nil {
		out.Announcements = remote.Announcements
	}
	if remote.Quotes != nil {
		out.Quotes = remote.Quotes
	}
	if remote.IndustryNews != nil {
		out.IndustryNews = remote.IndustryNews
	}
	return out
}
