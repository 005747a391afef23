// Package memory implementa los puertos de almacenamiento en memoria. Es el
// modo demo/offline (STORE_DRIVER=memory) y el doble de pruebas del servicio remoto.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

var _ repository.DocumentStore = (*Store)(nil)

// Store almacén de documentos en memoria protegido por un RWMutex.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	failure     error
	ops         int
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{collections: make(map[string]map[string]json.RawMessage)}
}

// SetFailure hace que toda operación posterior falle con err (nil la restablece).
// Simula un corte de red.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// Ops número de operaciones recibidas (incluidas las fallidas).
func (s *Store) Ops() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops
}

// Count número de documentos de una colección.
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *Store) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	data, ok := s.collections[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(data), nil
}

func (s *Store) List(ctx context.Context, collection string, q repository.Query) ([]repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	docs := make([]repository.Document, 0, len(s.collections[collection]))
	for id, data := range s.collections[collection] {
		docs = append(docs, repository.Document{ID: id, Data: clone(data)})
	}
	return ApplyQuery(docs, q), nil
}

func (s *Store) Put(ctx context.Context, collection, id string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("put %s/%s: json inválido", collection, id)
	}
	s.put(collection, id, data)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *Store) Batch(ctx context.Context, ops []repository.WriteOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}
	for _, op := range ops {
		if !op.Delete && !json.Valid(op.Data) {
			return fmt.Errorf("batch %s/%s: json inválido", op.Collection, op.ID)
		}
	}
	for _, op := range ops {
		if op.Delete {
			delete(s.collections[op.Collection], op.ID)
			continue
		}
		s.put(op.Collection, op.ID, op.Data)
	}
	return nil
}

// begin se llama con el mutex tomado.
func (s *Store) begin(ctx context.Context) error {
	s.ops++
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.failure
}

func (s *Store) put(collection, id string, data json.RawMessage) {
	c, ok := s.collections[collection]
	if !ok {
		c = make(map[string]json.RawMessage)
		s.collections[collection] = c
	}
	c[id] = clone(data)
}

func clone(b []byte) []byte {
	return bytes.Clone(b)
}

var _ repository.BlobStore = (*BlobStore)(nil)

type blob struct {
	data        []byte
	contentType string
}

// BlobStore almacén de blobs en memoria.
type BlobStore struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string]blob
	failure error
	ops     int
}

// NewBlobStore crea un almacén vacío; baseURL se usa para las URLs públicas.
func NewBlobStore(baseURL string) *BlobStore {
	return &BlobStore{baseURL: baseURL, blobs: make(map[string]blob)}
}

// SetFailure hace que toda operación posterior falle con err.
func (b *BlobStore) SetFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failure = err
}

// Ops número de operaciones recibidas.
func (b *BlobStore) Ops() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ops
}

// Has indica si existe un blob en path.
func (b *BlobStore) Has(path string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.blobs[path]
	return ok
}

func (b *BlobStore) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string, onProgress repository.ProgressFunc) (string, error) {
	if err := b.begin(ctx); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := repository.CopyWithProgress(&buf, r, size, onProgress); err != nil {
		return "", fmt.Errorf("leer blob %s: %w", path, err)
	}
	b.mu.Lock()
	b.blobs[path] = blob{data: buf.Bytes(), contentType: contentType}
	b.mu.Unlock()
	return repository.BlobURL(b.baseURL, path), nil
}

func (b *BlobStore) Download(ctx context.Context, path string, w io.Writer) (*repository.BlobInfo, error) {
	if err := b.begin(ctx); err != nil {
		return nil, err
	}
	b.mu.RLock()
	bl, ok := b.blobs[path]
	b.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if _, err := w.Write(bl.data); err != nil {
		return nil, err
	}
	return &repository.BlobInfo{Path: path, Size: int64(len(bl.data)), ContentType: bl.contentType}, nil
}

func (b *BlobStore) Delete(ctx context.Context, path string) error {
	if err := b.begin(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	delete(b.blobs, path)
	b.mu.Unlock()
	return nil
}

func (b *BlobStore) begin(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops++
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.failure
}
