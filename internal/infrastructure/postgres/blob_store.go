package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

var _ repository.BlobStore = (*BlobStore)(nil)

// BlobStore blobs como large objects de PostgreSQL, indexados por ruta en la tabla blobs.
type BlobStore struct {
	pool    *pgxpool.Pool
	baseURL string
}

// NewBlobStore construye el almacén; baseURL se usa para las URLs públicas.
func NewBlobStore(pool *pgxpool.Pool, baseURL string) *BlobStore {
	return &BlobStore{pool: pool, baseURL: baseURL}
}

// Upload escribe el contenido por bloques reportando progreso. Si la ruta ya
// existía, el large object anterior se elimina en la misma transacción.
func (s *BlobStore) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string, onProgress repository.ProgressFunc) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		los := tx.LargeObjects()
		oid, err := los.Create(ctx, 0)
		if err != nil {
			return fmt.Errorf("crear large object: %w", err)
		}
		obj, err := los.Open(ctx, oid, pgx.LargeObjectModeWrite)
		if err != nil {
			return fmt.Errorf("abrir large object: %w", err)
		}
		written, err := repository.CopyWithProgress(obj, r, size, onProgress)
		if err != nil {
			return fmt.Errorf("escribir blob %s: %w", path, err)
		}
		if err := obj.Close(); err != nil {
			return fmt.Errorf("cerrar large object: %w", err)
		}

		var previous *uint32
		err = tx.QueryRow(ctx, `SELECT oid FROM blobs WHERE path = $1 FOR UPDATE`, path).Scan(&previous)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("consultar blob %s: %w", path, err)
		}
		if previous != nil {
			if err := los.Unlink(ctx, *previous); err != nil && !isUndefinedObject(err) {
				return fmt.Errorf("eliminar versión previa de %s: %w", path, err)
			}
		}
		_, err = tx.Exec(ctx, `INSERT INTO blobs (path, oid, size, content_type)
VALUES ($1, $2, $3, $4)
ON CONFLICT (path) DO UPDATE SET oid = EXCLUDED.oid, size = EXCLUDED.size,
  content_type = EXCLUDED.content_type, created_at = now()`,
			path, oid, written, contentType)
		if err != nil {
			return fmt.Errorf("registrar blob %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return repository.BlobURL(s.baseURL, path), nil
}

func (s *BlobStore) Download(ctx context.Context, path string, w io.Writer) (*repository.BlobInfo, error) {
	var info repository.BlobInfo
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		var oid uint32
		err := tx.QueryRow(ctx, `SELECT oid, size, content_type FROM blobs WHERE path = $1`, path).
			Scan(&oid, &info.Size, &info.ContentType)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("consultar blob %s: %w", path, err)
		}
		los := tx.LargeObjects()
		obj, err := los.Open(ctx, oid, pgx.LargeObjectModeRead)
		if err != nil {
			return fmt.Errorf("abrir large object: %w", err)
		}
		defer obj.Close()
		if _, err := io.Copy(w, obj); err != nil {
			return fmt.Errorf("leer blob %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	info.Path = path
	return &info, nil
}

func (s *BlobStore) Delete(ctx context.Context, path string) error {
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		var oid uint32
		err := tx.QueryRow(ctx, `DELETE FROM blobs WHERE path = $1 RETURNING oid`, path).Scan(&oid)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("eliminar blob %s: %w", path, err)
		}
		los := tx.LargeObjects()
		if err := los.Unlink(ctx, oid); err != nil && !isUndefinedObject(err) {
			return fmt.Errorf("eliminar large object de %s: %w", path, err)
		}
		return nil
	})
}
