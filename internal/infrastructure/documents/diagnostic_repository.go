package documents

import (
	"context"

	"github.com/jdmorgan/trading-portal/internal/domain/entity"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

var _ repository.DiagnosticRepository = (*DiagnosticRepository)(nil)

// DiagnosticRepository documentos de la colección diagnostics.
type DiagnosticRepository struct {
	store repository.DocumentStore
}

// NewDiagnosticRepository construye el repositorio.
func NewDiagnosticRepository(store repository.DocumentStore) *DiagnosticRepository {
	return &DiagnosticRepository{store: store}
}

func (r *DiagnosticRepository) Create(ctx context.Context, d *entity.Diagnostic) error {
	return putAs(ctx, r.store, repository.CollectionDiagnostics, d.ID, d)
}

func (r *DiagnosticRepository) Page(ctx context.Context, after string, limit int) ([]*entity.Diagnostic, error) {
	q := repository.Query{StartAfter: after, Limit: limit}
	return listAs(ctx, r.store, repository.CollectionDiagnostics, q, func(d *entity.Diagnostic, id string) { d.ID = id })
}

func (r *DiagnosticRepository) DeleteMany(ctx context.Context, ids []string) error {
	return deleteMany(ctx, r.store, repository.CollectionDiagnostics, ids)
}
