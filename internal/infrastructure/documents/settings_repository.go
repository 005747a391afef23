package documents

import (
	"context"
	"fmt"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepository)(nil)

// SettingsRepository settings/app_config y la colección hero_slides.
type SettingsRepository struct {
	store repository.DocumentStore
}

// NewSettingsRepository construye el repositorio.
func NewSettingsRepository(store repository.DocumentStore) *SettingsRepository {
	return &SettingsRepository{store: store}
}

func (r *SettingsRepository) GetAppConfig(ctx context.Context) (*entity.AppConfig, error) {
	return getAs[entity.AppConfig](ctx, r.store, repository.CollectionSettings, repository.SettingsAppConfigID)
}

// ListSlides devuelve los slides individuales ordenados por order.
func (r *SettingsRepository) ListSlides(ctx context.Context) ([]entity.HeroSlide, error) {
	q := repository.Query{OrderBy: "order"}
	ptrs, err := listAs(ctx, r.store, repository.CollectionHeroSlides, q, func(s *entity.HeroSlide, id string) { s.ID = id })
	if err != nil {
		return nil, err
	}
	out := make([]entity.HeroSlide, 0, len(ptrs))
	for _, s := range ptrs {
		out = append(out, *s)
	}
	return out, nil
}

func (r *SettingsRepository) Publish(ctx context.Context, cfg entity.AppConfig, removedSlideIDs []string) error {
	ops := make([]repository.WriteOp, 0, 1+len(cfg.HeroSlides)+len(removedSlideIDs))
	op, err := repository.PutOp(repository.CollectionSettings, repository.SettingsAppConfigID, cfg)
	if err != nil {
		return err
	}
	ops = append(ops, op)
	for _, s := range cfg.HeroSlides {
		op, err := repository.PutOp(repository.CollectionHeroSlides, s.ID, s)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}
	for _, id := range removedSlideIDs {
		ops = append(ops, repository.DeleteOp(repository.CollectionHeroSlides, id))
	}
	if err := r.store.Batch(ctx, ops); err != nil {
		return fmt.Errorf("publish app_config: %w", err)
	}
	return nil
}
