// Package storage selecciona el backend de documentos y blobs según STORE_DRIVER.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/bolt"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/documents"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/memory"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/postgres"
	"github.com/jdmorgan/trading-portal/pkg/config"
)

// Backend almacén remoto abierto.
type Backend struct {
	Driver string
	Docs   repository.DocumentStore
	Blobs  repository.BlobStore
	Ledger repository.LedgerRepository

	close func() error
}

// Close libera conexiones y archivos del backend.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open abre el backend configurado. Con postgres aplica las migraciones.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	baseURL := cfg.App.PublicBaseURL
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB, postgres.DefaultPoolOptions)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		return &Backend{
			Driver: cfg.Store.Driver,
			Docs:   postgres.NewDocumentStore(pool),
			Blobs:  postgres.NewBlobStore(pool, baseURL),
			Ledger: postgres.NewLedgerRepository(pool),
			close:  func() error { pool.Close(); return nil },
		}, nil

	case config.DriverBolt:
		if dir := filepath.Dir(cfg.Store.BoltPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("crear directorio de bbolt: %w", err)
			}
		}
		db, err := bolt.Open(cfg.Store.BoltPath, baseURL)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver: cfg.Store.Driver,
			Docs:   db,
			Blobs:  db.Blobs(),
			Ledger: documents.NewLedgerRepository(db, cfg.Housekeeping.PageSize),
			close:  db.Close,
		}, nil

	default:
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &Backend{
			Driver: config.DriverMemory,
			Docs:   store,
			Blobs:  memory.NewBlobStore(baseURL),
			Ledger: documents.NewLedgerRepository(store, cfg.Housekeeping.PageSize),
		}, nil
	}
}
