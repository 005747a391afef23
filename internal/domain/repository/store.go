package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Colecciones persistidas en el almacén de documentos.
const (
	CollectionUsers          = "users"
	CollectionSubmissions    = "submissions"
	CollectionSettings       = "settings"
	CollectionHeroSlides     = "hero_slides"
	CollectionDiagnostics    = "diagnostics"
	CollectionIdentities     = "identities"
	CollectionIdentityEmails = "identity_emails"

	SettingsAppConfigID = "app_config"
)

// Document documento opaco identificado por ID dentro de una colección.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Query modificadores de List. Con StartAfter el orden es siempre por ID ascendente.
// Los documentos sin el campo OrderBy quedan al final en ambos sentidos.
type Query struct {
	OrderBy    string
	Desc       bool
	Limit      int
	StartAfter string
}

// WriteOp una escritura dentro de un Batch. Delete=true es un tombstone.
type WriteOp struct {
	Collection string
	ID         string
	Data       json.RawMessage
	Delete     bool
}

// PutOp serializa v como escritura de batch.
func PutOp(collection, id string, v any) (WriteOp, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return WriteOp{}, fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	return WriteOp{Collection: collection, ID: id, Data: data}, nil
}

// DeleteOp tombstone para un Batch.
func DeleteOp(collection, id string) WriteOp {
	return WriteOp{Collection: collection, ID: id, Delete: true}
}

// DocumentStore puerto del almacén de documentos (last-writer-wins, sin reintentos).
type DocumentStore interface {
	// Get devuelve domain.ErrNotFound si el documento no existe.
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	List(ctx context.Context, collection string, q Query) ([]Document, error)
	Put(ctx context.Context, collection, id string, data json.RawMessage) error
	// Delete de un documento inexistente no es error.
	Delete(ctx context.Context, collection, id string) error
	// Batch aplica todas las operaciones o ninguna.
	Batch(ctx context.Context, ops []WriteOp) error
}

// ProgressFunc recibe bytes transferidos y total esperado.
type ProgressFunc func(transferred, total int64)

// BlobInfo metadatos de un blob almacenado.
type BlobInfo struct {
	Path        string
	Size        int64
	ContentType string
}

// BlobStore puerto del almacén de objetos binarios.
type BlobStore interface {
	// Upload guarda el contenido y devuelve la URL pública. onProgress puede ser nil.
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string, onProgress ProgressFunc) (string, error)
	// Download escribe el contenido en w; domain.ErrNotFound si no existe.
	Download(ctx context.Context, path string, w io.Writer) (*BlobInfo, error)
	Delete(ctx context.Context, path string) error
}
