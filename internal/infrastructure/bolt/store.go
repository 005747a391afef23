// Package bolt implementa los almacenes de documentos y blobs sobre un único
// archivo bbolt. Es el driver del sandbox local (STORE_DRIVER=bolt).
package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/memory"
)

var (
	docsBucket     = []byte("documents")
	blobDataBucket = []byte("blob_data")
	blobMetaBucket = []byte("blob_meta")
)

var (
	_ repository.DocumentStore = (*Store)(nil)
	_ repository.BlobStore     = (*BlobStore)(nil)
)

// Store documentos (un sub-bucket por colección) en un archivo bbolt.
type Store struct {
	db      *bolt.DB
	baseURL string
}

// Open abre o crea el archivo y sus buckets raíz.
func Open(path, baseURL string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("abrir bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{docsBucket, blobDataBucket, blobMetaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("inicializar buckets: %w", err)
	}
	return &Store{db: db, baseURL: baseURL}, nil
}

// Close cierra el archivo.
func (s *Store) Close() error { return s.db.Close() }

func collectionBucket(tx *bolt.Tx, collection string) *bolt.Bucket {
	return tx.Bucket(docsBucket).Bucket([]byte(collection))
}

func (s *Store) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out json.RawMessage
	err := s.db.View(func(tx *bolt.Tx) error {
		b := collectionBucket(tx, collection)
		if b == nil {
			return domain.ErrNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return domain.ErrNotFound
		}
		out = bytes.Clone(v)
		return nil
	})
	return out, err
}

// List recorre el bucket con un cursor. Las consultas por id usan Seek; las
// ordenadas por campo se resuelven en memoria.
func (s *Store) List(ctx context.Context, collection string, q repository.Query) ([]repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []repository.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		b := collectionBucket(tx, collection)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		byID := q.StartAfter != "" || q.OrderBy == ""
		var k, v []byte
		if byID && q.StartAfter != "" {
			k, v = c.Seek([]byte(q.StartAfter))
			if k != nil && string(k) == q.StartAfter {
				k, v = c.Next()
			}
		} else {
			k, v = c.First()
		}
		for ; k != nil; k, v = c.Next() {
			docs = append(docs, repository.Document{ID: string(k), Data: bytes.Clone(v)})
			if byID && q.Limit > 0 && len(docs) == q.Limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	if q.StartAfter != "" || q.OrderBy == "" {
		return docs, nil
	}
	return memory.ApplyQuery(docs, q), nil
}

func (s *Store) Put(ctx context.Context, collection, id string, data json.RawMessage) error {
	return s.Batch(ctx, []repository.WriteOp{{Collection: collection, ID: id, Data: data}})
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.Batch(ctx, []repository.WriteOp{repository.DeleteOp(collection, id)})
}

// Batch aplica las operaciones en una única transacción de escritura.
func (s *Store) Batch(ctx context.Context, ops []repository.WriteOp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(docsBucket)
		for _, op := range ops {
			if op.Delete {
				if b := root.Bucket([]byte(op.Collection)); b != nil {
					if err := b.Delete([]byte(op.ID)); err != nil {
						return fmt.Errorf("delete %s/%s: %w", op.Collection, op.ID, err)
					}
				}
				continue
			}
			if !json.Valid(op.Data) {
				return fmt.Errorf("put %s/%s: json inválido", op.Collection, op.ID)
			}
			b, err := root.CreateBucketIfNotExists([]byte(op.Collection))
			if err != nil {
				return fmt.Errorf("bucket %s: %w", op.Collection, err)
			}
			if err := b.Put([]byte(op.ID), bytes.Clone(op.Data)); err != nil {
				return fmt.Errorf("put %s/%s: %w", op.Collection, op.ID, err)
			}
		}
		return nil
	})
}

// BlobStore blobs en el mismo archivo que los documentos.
type BlobStore struct {
	db      *bolt.DB
	baseURL string
}

// Blobs devuelve el almacén de blobs que comparte el archivo.
func (s *Store) Blobs() *BlobStore {
	return &BlobStore{db: s.db, baseURL: s.baseURL}
}

type blobMeta struct {
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Upload lee el contenido reportando progreso y lo escribe en una transacción.
func (s *BlobStore) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string, onProgress repository.ProgressFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	n, err := repository.CopyWithProgress(&buf, r, size, onProgress)
	if err != nil {
		return "", fmt.Errorf("leer blob %s: %w", path, err)
	}
	meta, err := json.Marshal(blobMeta{Size: n, ContentType: contentType})
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(blobDataBucket).Put([]byte(path), buf.Bytes()); err != nil {
			return err
		}
		return tx.Bucket(blobMetaBucket).Put([]byte(path), meta)
	})
	if err != nil {
		return "", fmt.Errorf("guardar blob %s: %w", path, err)
	}
	return repository.BlobURL(s.baseURL, path), nil
}

func (s *BlobStore) Download(ctx context.Context, path string, w io.Writer) (*repository.BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		data []byte
		meta blobMeta
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blobDataBucket).Get([]byte(path))
		if v == nil {
			return domain.ErrNotFound
		}
		data = bytes.Clone(v)
		if m := tx.Bucket(blobMetaBucket).Get([]byte(path)); m != nil {
			return json.Unmarshal(m, &meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	return &repository.BlobInfo{Path: path, Size: int64(len(data)), ContentType: meta.ContentType}, nil
}

func (s *BlobStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(blobDataBucket).Delete([]byte(path)); err != nil {
			return err
		}
		return tx.Bucket(blobMetaBucket).Delete([]byte(path))
	})
}
