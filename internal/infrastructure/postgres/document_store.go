package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

// DocumentStore documentos JSONB en la tabla documents.
type DocumentStore struct {
	pool *pgxpool.Pool
}

// NewDocumentStore construye el almacén sobre el pool.
func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return data, nil
}

// List traduce repository.Query a SQL. Orden por campo: ausentes al final,
// luego por tipo JSON (número < texto < booleano), valor y desempate por id.
func (s *DocumentStore) List(ctx context.Context, collection string, q repository.Query) ([]repository.Document, error) {
	sql, args := listSQL(collection, q)
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []repository.Document
	for rows.Next() {
		var d repository.Document
		var data []byte
		if err := rows.Scan(&d.ID, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		d.Data = data
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return out, nil
}

func listSQL(collection string, q repository.Query) (string, []any) {
	args := []any{collection}
	sql := `SELECT id, data FROM documents WHERE collection = $1`
	switch {
	case q.StartAfter != "" || q.OrderBy == "":
		if q.StartAfter != "" {
			args = append(args, q.StartAfter)
			sql += fmt.Sprintf(` AND id > $%d`, len(args))
		}
		sql += ` ORDER BY id`
	default:
		args = append(args, q.OrderBy)
		f := fmt.Sprintf(`$%d::text`, len(args))
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		sql += fmt.Sprintf(` ORDER BY
  (jsonb_typeof(data->%[1]s) IS NULL OR jsonb_typeof(data->%[1]s) = 'null'),
  CASE jsonb_typeof(data->%[1]s) WHEN 'number' THEN 0 WHEN 'string' THEN 1 WHEN 'boolean' THEN 2 ELSE 3 END %[2]s,
  CASE WHEN jsonb_typeof(data->%[1]s) = 'number' THEN (data->>%[1]s)::numeric END %[2]s,
  (data->>%[1]s) COLLATE "C" %[2]s,
  id`, f, dir)
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	return sql, args
}

func (s *DocumentStore) Put(ctx context.Context, collection, id string, data json.RawMessage) error {
	if _, err := s.pool.Exec(ctx, upsertSQL, collection, id, []byte(data)); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.pool.Exec(ctx, deleteSQL, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Batch envía todas las operaciones en un pgx.Batch dentro de una transacción.
func (s *DocumentStore) Batch(ctx context.Context, ops []repository.WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, op := range ops {
			if op.Delete {
				b.Queue(deleteSQL, op.Collection, op.ID)
				continue
			}
			b.Queue(upsertSQL, op.Collection, op.ID, []byte(op.Data))
		}
		br := tx.SendBatch(ctx, b)
		for i := range ops {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("batch op %d (%s/%s): %w", i, ops[i].Collection, ops[i].ID, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("batch close: %w", err)
		}
		return nil
	})
}

const (
	upsertSQL = `INSERT INTO documents (collection, id, data, updated_at)
VALUES ($1, $2, $3::jsonb, now())
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	deleteSQL = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)
