package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// DefaultSubmissionLimit número de intenciones recientes que muestra el panel.
const DefaultSubmissionLimit = 20

// SubmissionUseCase lectura y mantenimiento de intenciones (solo admin).
type SubmissionUseCase struct {
	repo  repository.SubmissionRepository
	blobs repository.BlobStore
	log   zerolog.Logger
}

// NewSubmissionUseCase construye el caso de uso. blobs puede ser nil.
func NewSubmissionUseCase(repo repository.SubmissionRepository, blobs repository.BlobStore, log zerolog.Logger) *SubmissionUseCase {
	return &SubmissionUseCase{repo: repo, blobs: blobs, log: log}
}

// ListRecent devuelve las últimas intenciones por timestamp descendente.
func (uc *SubmissionUseCase) ListRecent(ctx context.Context, limit int) ([]*entity.TradeSubmission, error) {
	if limit <= 0 {
		limit = DefaultSubmissionLimit
	}
	list, err := uc.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, domain.Read(err)
	}
	return list, nil
}

// Get devuelve una intención o un error NOT_FOUND.
func (uc *SubmissionUseCase) Get(ctx context.Context, id string) (*entity.TradeSubmission, error) {
	s, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, domain.Read(err)
	}
	if s == nil {
		return nil, domain.NotFound(domain.ErrNotFound)
	}
	return s, nil
}

// UpdateStatus cambia la etiqueta de estado.
func (uc *SubmissionUseCase) UpdateStatus(ctx context.Context, id string, status entity.SubmissionStatus) (*entity.TradeSubmission, error) {
	switch status {
	case entity.StatusPending, entity.StatusVerified, entity.StatusInReview:
	default:
		return nil, domain.Validation("status", "estado inválido")
	}
	s, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, domain.Write(err)
	}
	s.Status = status
	return s, nil
}

// Delete borra la intención y, si tiene, su adjunto.
func (uc *SubmissionUseCase) Delete(ctx context.Context, id string) error {
	s, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return domain.Write(err)
	}
	if s.FilePath != "" && uc.blobs != nil {
		if err := uc.blobs.Delete(ctx, s.FilePath); err != nil {
			uc.log.Warn().Err(err).Str("path", s.FilePath).Msg("no se pudo eliminar adjunto")
		}
	}
	return nil
}
