package documents

import (
	"context"
	"fmt"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

var _ repository.SubmissionRepository = (*SubmissionRepository)(nil)

// SubmissionRepository intenciones en la colección submissions.
type SubmissionRepository struct {
	store repository.DocumentStore
}

// NewSubmissionRepository construye el repositorio.
func NewSubmissionRepository(store repository.DocumentStore) *SubmissionRepository {
	return &SubmissionRepository{store: store}
}

func (r *SubmissionRepository) Create(ctx context.Context, s *entity.TradeSubmission) error {
	if s.ID == "" {
		return fmt.Errorf("create submission: id vacío")
	}
	return putAs(ctx, r.store, repository.CollectionSubmissions, s.ID, s)
}

func (r *SubmissionRepository) Get(ctx context.Context, id string) (*entity.TradeSubmission, error) {
	s, err := getAs[entity.TradeSubmission](ctx, r.store, repository.CollectionSubmissions, id)
	if s != nil {
		s.ID = id
	}
	return s, err
}

// ListRecent devuelve las últimas intenciones por timestamp descendente.
func (r *SubmissionRepository) ListRecent(ctx context.Context, limit int) ([]*entity.TradeSubmission, error) {
	q := repository.Query{OrderBy: "timestamp", Desc: true, Limit: limit}
	return listAs(ctx, r.store, repository.CollectionSubmissions, q, fixSubmissionID)
}

func (r *SubmissionRepository) Page(ctx context.Context, after string, limit int) ([]*entity.TradeSubmission, error) {
	q := repository.Query{StartAfter: after, Limit: limit}
	return listAs(ctx, r.store, repository.CollectionSubmissions, q, fixSubmissionID)
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status entity.SubmissionStatus) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrNotFound
	}
	s.Status = status
	return putAs(ctx, r.store, repository.CollectionSubmissions, id, s)
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, repository.CollectionSubmissions, id); err != nil {
		return fmt.Errorf("delete submission %s: %w", id, err)
	}
	return nil
}

func (r *SubmissionRepository) DeleteMany(ctx context.Context, ids []string) error {
	return deleteMany(ctx, r.store, repository.CollectionSubmissions, ids)
}

func fixSubmissionID(s *entity.TradeSubmission, id string) {
	s.ID = id
}
