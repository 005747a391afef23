// Package documents implementa los repositorios tipados sobre cualquier
// repository.DocumentStore (PostgreSQL, bbolt o memoria).
package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// getAs lee y decodifica un documento; (nil, nil) si no existe.
func getAs[T any](ctx context.Context, s repository.DocumentStore, collection, id string) (*T, error) {
	data, err := s.Get(ctx, collection, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &v, nil
}

// listAs lista y decodifica documentos. fix recibe cada valor con el ID del documento.
func listAs[T any](ctx context.Context, s repository.DocumentStore, collection string, q repository.Query, fix func(*T, string)) ([]*T, error) {
	docs, err := s.List(ctx, collection, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]*T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Data, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, d.ID, err)
		}
		if fix != nil {
			fix(&v, d.ID)
		}
		out = append(out, &v)
	}
	return out, nil
}

func putAs(ctx context.Context, s repository.DocumentStore, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	if err := s.Put(ctx, collection, id, data); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func deleteMany(ctx context.Context, s repository.DocumentStore, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ops := make([]repository.WriteOp, 0, len(ids))
	for _, id := range ids {
		ops = append(ops, repository.DeleteOp(collection, id))
	}
	if err := s.Batch(ctx, ops); err != nil {
		return fmt.Errorf("batch delete %s (%d): %w", collection, len(ids), err)
	}
	return nil
}
